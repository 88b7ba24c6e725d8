package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/CleverTap/clevertap-unreal-sdk/internal/inapp"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/instance"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/observability"
	"github.com/CleverTap/clevertap-unreal-sdk/internal/properties"
)

// Command operations.
const (
	opPushEvent                  = "push_event"
	opPushChargedEvent           = "push_charged_event"
	opPushProfile                = "push_profile"
	opOnUserLogin                = "on_user_login"
	opPromptPushPermission       = "prompt_push_permission"
	opPushPrimerAlert            = "push_primer_alert"
	opPushPrimerHalfInterstitial = "push_primer_half_interstitial"
	opFlush                      = "flush"
)

var errUnknownOp = errors.New("unknown op")

// command is one line of input.
type command struct {
	Op                 string                  `json:"op"`
	Name               string                  `json:"name,omitempty"`
	Properties         properties.Properties   `json:"properties,omitempty"`
	Items              []properties.Properties `json:"items,omitempty"`
	CleverTapID        string                  `json:"clevertap_id,omitempty"`
	FallbackToSettings bool                    `json:"fallback_to_settings,omitempty"`
	Params             inapp.Params            `json:"params,omitempty"`
}

// result is written for every command.
type result struct {
	Op          string `json:"op,omitempty"`
	OK          bool   `json:"ok"`
	Error       string `json:"error,omitempty"`
	CleverTapID string `json:"clevertap_id,omitempty"`
}

// sharedInstance is implemented by instance.Subsystem.
type sharedInstance interface {
	SharedInstance(ctx context.Context) (instance.Instance, error)
}

// flushTrigger is implemented by delivery.Flusher.
type flushTrigger interface {
	Trigger()
}

// commandRunner executes commands against the shared instance.
type commandRunner struct {
	instances sharedInstance
	flusher   flushTrigger
	metrics   *observability.Metrics
	logger    *slog.Logger
}

func newCommandRunner(instances sharedInstance, flusher flushTrigger, metrics *observability.Metrics, logger *slog.Logger) *commandRunner {
	if metrics == nil {
		metrics = observability.NoopMetrics()
	}
	return &commandRunner{
		instances: instances,
		flusher:   flusher,
		metrics:   metrics,
		logger:    logger.With("component", "commands"),
	}
}

// Run executes one command per input line until r is exhausted or ctx is
// canceled, writing one JSON result per line to w.
func (c *commandRunner) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	enc := json.NewEncoder(w)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}

		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		res := c.execute(ctx, line)
		if err := enc.Encode(res); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read commands: %w", err)
	}
	return nil
}

func (c *commandRunner) execute(ctx context.Context, line []byte) result {
	var cmd command
	if err := json.Unmarshal(line, &cmd); err != nil {
		return result{Error: fmt.Sprintf("invalid command JSON: %v", err)}
	}

	res := result{Op: cmd.Op, OK: true}
	if err := c.dispatch(ctx, cmd, &res); err != nil {
		c.logger.Warn("command failed", "op", cmd.Op, "error", err)
		res.OK = false
		res.Error = err.Error()
		return res
	}

	c.logger.Debug("command executed", "op", cmd.Op)
	return res
}

func (c *commandRunner) dispatch(ctx context.Context, cmd command, res *result) error {
	if cmd.Op == opFlush {
		c.flusher.Trigger()
		return nil
	}

	inst, err := c.instances.SharedInstance(ctx)
	if err != nil {
		return err
	}

	switch cmd.Op {
	case opPushEvent:
		err = inst.PushEvent(cmd.Name, cmd.Properties)
	case opPushChargedEvent:
		err = inst.PushChargedEvent(cmd.Properties, cmd.Items)
	case opPushProfile:
		err = inst.PushProfile(cmd.Properties)
	case opOnUserLogin:
		if cmd.CleverTapID != "" {
			err = inst.OnUserLoginWithID(cmd.Properties, cmd.CleverTapID)
		} else {
			err = inst.OnUserLogin(cmd.Properties)
		}
	case opPromptPushPermission:
		err = inst.PromptForPushPermission(cmd.FallbackToSettings)
	case opPushPrimerAlert:
		err = c.promptPrimer(ctx, inst, inapp.TypeAlert, inapp.BuildAlertConfig, cmd.Params)
	case opPushPrimerHalfInterstitial:
		err = c.promptPrimer(ctx, inst, inapp.TypeHalfInterstitial, inapp.BuildHalfInterstitialConfig, cmd.Params)
	default:
		return fmt.Errorf("%w: %q", errUnknownOp, cmd.Op)
	}
	if err != nil {
		return err
	}

	res.CleverTapID = inst.CleverTapID()
	c.flusher.Trigger()
	return nil
}

func (c *commandRunner) promptPrimer(ctx context.Context, inst instance.Instance, t inapp.Type, build func(inapp.Params) (inapp.Descriptor, error), params inapp.Params) error {
	d, err := build(params)
	c.metrics.RecordTranslation(ctx, t.String(), err == nil)
	if err != nil {
		return err
	}
	return inst.PromptForPushPrimer(d)
}
