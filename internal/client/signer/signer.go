// Package signer hands Move calls to an external signing tool and reports
// the executed transaction.
package signer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/dealwatch/internal/logging"
)

var ErrExecutionFailed = errors.New("transaction execution failed")

const (
	DefaultBinary    = "sui"
	DefaultGasBudget = 10_000_000
)

// MoveCall is one entry function invocation.
type MoveCall struct {
	Package  string
	Module   string
	Function string
	TypeArgs []string
	Args     []string
}

func (c MoveCall) Target() string {
	return c.Package + "::" + c.Module + "::" + c.Function
}

// Receipt describes a submitted transaction.
type Receipt struct {
	Digest string
	Status string
}

// Signer signs and submits a Move call on behalf of the active address.
type Signer interface {
	SignAndSubmit(ctx context.Context, call MoveCall) (Receipt, error)
}

// Runner executes name with args and returns its standard output.
type Runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return out, fmt.Errorf("%s: %w: %s", name, err, msg)
		}
		return out, fmt.Errorf("%s: %w", name, err)
	}
	return out, nil
}

// CLISigner delegates to `sui client call`, which signs with the keystore
// of the locally configured active address.
type CLISigner struct {
	binary    string
	gasBudget uint64
	run       Runner
	log       logging.Logger
}

func NewCLISigner(binary string, gasBudget uint64, log logging.Logger) *CLISigner {
	if binary == "" {
		binary = DefaultBinary
	}
	if gasBudget == 0 {
		gasBudget = DefaultGasBudget
	}
	return &CLISigner{binary: binary, gasBudget: gasBudget, run: execRunner, log: log}
}

func (s *CLISigner) args(call MoveCall) []string {
	args := []string{
		"client", "call",
		"--package", call.Package,
		"--module", call.Module,
		"--function", call.Function,
	}
	if len(call.TypeArgs) > 0 {
		args = append(args, "--type-args")
		args = append(args, call.TypeArgs...)
	}
	if len(call.Args) > 0 {
		args = append(args, "--args")
		args = append(args, call.Args...)
	}
	return append(args, "--gas-budget", strconv.FormatUint(s.gasBudget, 10), "--json")
}

type callOutput struct {
	Digest  string `json:"digest"`
	Effects struct {
		Status struct {
			Status string `json:"status"`
			Error  string `json:"error"`
		} `json:"status"`
	} `json:"effects"`
}

func (s *CLISigner) SignAndSubmit(ctx context.Context, call MoveCall) (Receipt, error) {
	s.log.Debug(ctx, "submitting move call", "target", call.Target(), "type_args", call.TypeArgs, "args", call.Args)

	out, err := s.run(ctx, s.binary, s.args(call)...)
	if err != nil {
		return Receipt{}, fmt.Errorf("%s: %w", call.Target(), err)
	}

	receipt, err := parseCallOutput(out)
	if err != nil {
		return receipt, fmt.Errorf("%s: %w", call.Target(), err)
	}

	s.log.Info(ctx, "transaction executed", "target", call.Target(), "digest", receipt.Digest)
	return receipt, nil
}

// parseCallOutput reads the JSON document printed by the CLI. Anything
// before the first '{' is a warning banner and is ignored.
func parseCallOutput(out []byte) (Receipt, error) {
	start := bytes.IndexByte(out, '{')
	if start < 0 {
		return Receipt{}, fmt.Errorf("unexpected signer output: %q", strings.TrimSpace(string(out)))
	}

	var res callOutput
	if err := json.Unmarshal(out[start:], &res); err != nil {
		return Receipt{}, fmt.Errorf("decode signer output: %w", err)
	}

	receipt := Receipt{Digest: res.Digest, Status: res.Effects.Status.Status}
	if receipt.Status != "success" {
		if res.Effects.Status.Error != "" {
			return receipt, fmt.Errorf("%w: %s: %s", ErrExecutionFailed, res.Digest, res.Effects.Status.Error)
		}
		return receipt, fmt.Errorf("%w: %s: status %q", ErrExecutionFailed, res.Digest, receipt.Status)
	}
	return receipt, nil
}
