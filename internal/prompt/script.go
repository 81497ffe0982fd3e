package prompt

import (
	"context"
	"fmt"
	"strings"
)

// Answer is one scripted reply. Text answers Input, Index answers Select and
// Yes answers Confirm.
type Answer struct {
	Text  string
	Index int
	Yes   bool
}

// ScriptDriver replays answers in order and records the messages shown. It
// backs non-interactive runs and tests.
type ScriptDriver struct {
	Answers []Answer
	Shown   []string
	Asked   []string
}

var _ Driver = (*ScriptDriver)(nil)

func (d *ScriptDriver) next(message string) (Answer, error) {
	d.Asked = append(d.Asked, message)
	if len(d.Answers) == 0 {
		return Answer{}, fmt.Errorf("%w: no scripted answer for %q", ErrAborted, message)
	}
	answer := d.Answers[0]
	d.Answers = d.Answers[1:]
	return answer, nil
}

func (d *ScriptDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	answer, err := d.next(cfg.Message)
	if err != nil {
		return "", err
	}
	text := answer.Text
	if text == "" {
		text = cfg.Default
	}
	if cfg.Validator != nil {
		if err := cfg.Validator(text); err != nil {
			return "", err
		}
	}
	return text, nil
}

func (d *ScriptDriver) Confirm(ctx context.Context, cfg ConfirmConfig) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	answer, err := d.next(cfg.Message)
	if err != nil {
		return false, err
	}
	return answer.Yes, nil
}

func (d *ScriptDriver) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	answer, err := d.next(cfg.Message)
	if err != nil {
		return 0, err
	}
	if answer.Index < 0 || answer.Index >= len(cfg.Options) {
		return 0, fmt.Errorf("prompt: scripted index %d out of range for %q", answer.Index, cfg.Message)
	}
	return answer.Index, nil
}

func (d *ScriptDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.Shown = append(d.Shown, msg)
	return nil
}

// Transcript joins everything shown so far.
func (d *ScriptDriver) Transcript() string {
	return strings.Join(d.Shown, "\n")
}
