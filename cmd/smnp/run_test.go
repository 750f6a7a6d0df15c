package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maks-it/smnp/internal/config"
	"github.com/maks-it/smnp/internal/dispatch"
	"github.com/maks-it/smnp/internal/logging"
	"github.com/maks-it/smnp/internal/resolve"
	"github.com/maks-it/smnp/internal/sender"
	"github.com/maks-it/smnp/snmp/snmptest"
)

const actionsFile = "/etc/smnp/actions.txt"

// loopbackLookup resolves the given names to 127.0.0.1 and nothing else.
func loopbackLookup(names ...string) resolve.LookupFunc {
	known := make(map[string]bool, len(names))
	for _, n := range names {
		known[n] = true
	}
	return func(ctx context.Context, host string) ([]net.IPAddr, error) {
		if !known[host] {
			return nil, &net.DNSError{Err: "no such host", Name: host, IsNotFound: true}
		}
		return []net.IPAddr{{IP: net.ParseIP("::1")}, {IP: net.IPv4(127, 0, 0, 1)}}, nil
	}
}

func testEnv(t *testing.T, cfg *config.Config, content *string, agent *snmptest.Agent) (*environment, *bytes.Buffer) {
	t.Helper()

	fs := afero.NewMemMapFs()
	if content != nil {
		require.NoError(t, afero.WriteFile(fs, actionsFile, []byte(*content), 0o644))
	}

	cfg.ActionsPath = actionsFile
	cfg.NoColor = true
	cfg.Timeout = 200 * time.Millisecond
	if agent != nil {
		cfg.Port = agent.Port()
	}

	logger := logging.NewNop()
	snd := sender.NewSNMP(sender.WithTimeout(cfg.Timeout), sender.WithLogger(logger))

	var out bytes.Buffer
	return &environment{
		cfg:      cfg,
		fs:       fs,
		out:      &out,
		runID:    "test-run",
		logger:   logger,
		resolver: resolve.New(resolve.WithLookup(loopbackLookup("sw1", "sw2"))),
		sender:   snd,
		metrics:  snd.Metrics(),
	}, &out
}

func newAgent(t *testing.T, handler snmptest.Handler) *snmptest.Agent {
	t.Helper()
	agent, err := snmptest.NewAgent(handler)
	require.NoError(t, err)
	t.Cleanup(func() { agent.Close() })
	return agent
}

func ptr(s string) *string { return &s }

func TestRunActionsMissingFile(t *testing.T) {
	env, out := testEnv(t, config.Default(), nil, nil)

	code := runActions(context.Background(), env)
	assert.Equal(t, 1, code)
	assert.Contains(t, out.String(), "Error reading actions file:")
	assert.Contains(t, out.String(), actionsFile)
}

func TestRunActionsEmptyFile(t *testing.T) {
	env, out := testEnv(t, config.Default(), ptr(""), nil)

	code := runActions(context.Background(), env)
	assert.Equal(t, 0, code)
	assert.Equal(t, "Actions file is empty.\n", out.String())
}

func TestRunActionsAllSucceed(t *testing.T) {
	agent := newAgent(t, snmptest.RequireCommunity("private"))
	env, out := testEnv(t, config.Default(), ptr(
		"sw1 private 1.3.6.1.2.1.1.5.0 7\r\n\r\nsw2 private 1.3.6.1.4.1.9.2.1.55.0 -1\n",
	), agent)

	code := runActions(context.Background(), env)
	assert.Equal(t, 0, code)

	text := out.String()
	assert.Contains(t, text, "OK   line 1: SNMP request sent successfully to sw1.")
	assert.Contains(t, text, "OK   line 3: SNMP request sent successfully to sw2.")
	assert.Contains(t, text, "2 sent, 2 answered, 0 timed out")
	assert.Len(t, agent.Received(), 2)
}

func TestRunActionsLastFailureDecides(t *testing.T) {
	agent := newAgent(t, snmptest.RequireCommunity("private"))
	env, out := testEnv(t, config.Default(), ptr(strings.Join([]string{
		"sw1 private 1.3.6.1.2.1.1.5.0 1",
		"sw1 public 1.3.6.1.2.1.1.5.0 1",  // dropped by the agent
		"ghost private 1.3.6.1.2.1.1.5.0 1", // not resolvable
		"sw2 private 1.3.6.1.2.1.1.5.0 1",
	}, "\n")), agent)

	code := runActions(context.Background(), env)
	assert.Equal(t, 2, code)

	text := out.String()
	assert.Contains(t, text, "FAIL line 2: error sending SNMP request to sw1")
	assert.Contains(t, text, "FAIL line 3: could not resolve host ghost")
	assert.Contains(t, text, "OK   line 4:")
	assert.Len(t, agent.Received(), 3)
}

func TestRunActionsSeverity(t *testing.T) {
	agent := newAgent(t, snmptest.Drop)
	cfg := config.Default()
	cfg.Policy = dispatch.PolicySeverity
	env, _ := testEnv(t, cfg, ptr(strings.Join([]string{
		"sw1 private 1.3.6.1.2.1.1.5.0 1",
		"ghost private 1.3.6.1.2.1.1.5.0 1",
		"sw2 private 1.3.6.1.2.1.1.5.0 notanumber",
	}, "\n")), agent)

	assert.Equal(t, 3, runActions(context.Background(), env))
}

func TestRunActionsJSON(t *testing.T) {
	agent := newAgent(t, snmptest.Accept)
	cfg := config.Default()
	cfg.Output = config.OutputJSON
	env, out := testEnv(t, cfg, ptr(
		"sw1 public 1.3.6.1.2.1.1.5.0 42\nsw1 public 1.3.6.1.2.1.1.5.0\n",
	), agent)

	code := runActions(context.Background(), env)
	assert.Equal(t, 1, code)

	var records []map[string]any
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec), scanner.Text())
		records = append(records, rec)
	}
	require.Len(t, records, 3)

	ok := records[0]
	assert.Equal(t, "action", ok["type"])
	assert.Equal(t, "test-run", ok["run_id"])
	assert.Equal(t, "success", ok["status"])
	assert.Equal(t, "sent", ok["stage"])
	assert.EqualValues(t, 42, ok["value"])
	assert.Equal(t, agent.Addr(), ok["target"])

	bad := records[1]
	assert.Equal(t, "parse_error", bad["status"])
	assert.Equal(t, "start", bad["stage"])
	assert.NotContains(t, bad, "target")
	assert.Contains(t, bad["error"], "expected <host> <community> <oid> <integer-value>")

	summary := records[2]
	assert.Equal(t, "summary", summary["type"])
	assert.EqualValues(t, 2, summary["actions"])
	assert.EqualValues(t, 1, summary["parse_errors"])
	assert.EqualValues(t, 1, summary["exit_code"])
	requests := summary["requests"].(map[string]any)
	assert.EqualValues(t, 1, requests["sent"])
}

func TestRunActionsCanceled(t *testing.T) {
	agent := newAgent(t, snmptest.Drop)
	env, _ := testEnv(t, config.Default(), ptr("sw1 public 1.3.6.1.2.1.1.5.0 1\n"), agent)
	env.cfg.Timeout = time.Minute
	env.sender = sender.NewSNMP(sender.WithTimeout(time.Minute), sender.WithLogger(env.logger))

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	assert.Equal(t, 3, runActions(ctx, env))
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestValidateActions(t *testing.T) {
	env, out := testEnv(t, config.Default(), ptr(strings.Join([]string{
		"sw1 public 1.3.6.1.2.1.1.5.0 1",
		"",
		"sw1 public 1.3.6.1.2.1.1.5.0 99999999999",
		"sw1 public 1.3.6.1.2.1.1.5.0 1 extra",
	}, "\n")), nil)

	assert.Equal(t, 1, validateActions(env))
	assert.Contains(t, out.String(), "line 3:")
	assert.Contains(t, out.String(), "3 actions, 1 invalid")

	env, out = testEnv(t, config.Default(), ptr("sw1 public 1.3.6.1.2.1.1.5.0 1 extra\n"), nil)
	assert.Equal(t, 0, validateActions(env))
	assert.Contains(t, out.String(), "1 actions, 0 invalid")

	cfg := config.Default()
	cfg.Strict = true
	env, _ = testEnv(t, cfg, ptr("sw1 public 1.3.6.1.2.1.1.5.0 1 extra\n"), nil)
	assert.Equal(t, 1, validateActions(env))

	env, _ = testEnv(t, config.Default(), nil, nil)
	assert.Equal(t, 1, validateActions(env))
}

func TestValidateActionsJSON(t *testing.T) {
	cfg := config.Default()
	cfg.Output = config.OutputJSON
	env, out := testEnv(t, cfg, ptr("sw1 public 1.3.6.1.2.1.1.5.0 1\nsw1 public 1.3.6.1 x\n"), nil)

	assert.Equal(t, 1, validateActions(env))

	var records []map[string]any
	scanner := bufio.NewScanner(out)
	for scanner.Scan() {
		var rec map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec), scanner.Text())
		records = append(records, rec)
	}
	require.Len(t, records, 2)

	assert.Equal(t, "invalid", records[0]["type"])
	assert.EqualValues(t, 2, records[0]["line"])
	assert.Equal(t, "sw1 public 1.3.6.1 x", records[0]["text"])

	assert.Equal(t, "validation", records[1]["type"])
	assert.Equal(t, actionsFile, records[1]["path"])
	assert.EqualValues(t, 2, records[1]["actions"])
	assert.EqualValues(t, 1, records[1]["invalid"])
	assert.EqualValues(t, 1, records[1]["exit_code"])
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 3, exitCode(&exitError{code: 3}))
	assert.Equal(t, 2, exitCode(&exitError{code: 2, err: errors.New("boom")}))
	assert.Equal(t, 1, exitCode(errors.New("unknown flag: --nope")))
}

func TestPrintVersionInfo(t *testing.T) {
	var buf bytes.Buffer
	printVersionInfo(&buf)
	assert.Contains(t, buf.String(), "smnp version dev")
	assert.Contains(t, buf.String(), "SNMPv2c")
}
