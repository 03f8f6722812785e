package registry

import (
	"context"
	"log/slog"

	"github.com/aretw0/canopy/pkg/bt"
	"github.com/aretw0/canopy/pkg/decorators"
	"github.com/aretw0/canopy/pkg/schema"
)

func builtins() map[string]Factory {
	return map[string]Factory{
		"sequence": {
			Shape:       ShapeComposite,
			Description: "Runs children in order until one does not succeed.",
			Build: func(in Input) (*bt.Node, error) {
				return bt.NewSequence(in.ID, in.Children...), nil
			},
		},
		"selector": {
			Shape:       ShapeComposite,
			Description: "Runs children in order until one does not fail.",
			Build: func(in Input) (*bt.Node, error) {
				return bt.NewSelector(in.ID, in.Children...), nil
			},
		},
		"parallel": {
			Shape:       ShapeComposite,
			Description: "Ticks every child on each call. Fails on the first failure, succeeds once all children succeeded.",
			Schema:      schema.Schema{"mode": schema.Enum("skip", "restart")},
			Build: func(in Input) (*bt.Node, error) {
				var cfg struct {
					Mode bt.ParallelMode `mapstructure:"mode"`
				}
				if err := in.Decode(&cfg); err != nil {
					return nil, err
				}
				return bt.NewParallel(in.ID, cfg.Mode, in.Children...), nil
			},
		},
		"succeed": {
			Shape:       ShapeLeaf,
			Description: "Succeeds immediately.",
			Build: func(in Input) (*bt.Node, error) {
				return constant(in.ID, bt.Success), nil
			},
		},
		"fail": {
			Shape:       ShapeLeaf,
			Description: "Fails immediately.",
			Build: func(in Input) (*bt.Node, error) {
				return constant(in.ID, bt.Failed), nil
			},
		},
		"wait": {
			Shape:       ShapeLeaf,
			Description: "Stays running for a number of ticks, then returns its result.",
			Schema:      schema.Schema{"ticks": schema.Int(), "result": schema.Status()},
			Build: func(in Input) (*bt.Node, error) {
				cfg := struct {
					Ticks  int       `mapstructure:"ticks"`
					Result bt.Status `mapstructure:"result"`
				}{Ticks: 1, Result: bt.Success}
				if err := in.Decode(&cfg); err != nil {
					return nil, err
				}
				return bt.NewLeaf[waitState](in.ID, waitLeaf{ticks: cfg.Ticks, result: cfg.Result}), nil
			},
		},
		"log": {
			Shape:       ShapeLeaf,
			Description: "Writes a message to the engine log and returns its result.",
			Schema: schema.Schema{
				"message": schema.String(),
				"level":   schema.Enum("debug", "info", "warn", "error"),
				"result":  schema.Status(),
			},
			Build: func(in Input) (*bt.Node, error) {
				var cfg struct {
					Message string    `mapstructure:"message"`
					Level   string    `mapstructure:"level"`
					Result  bt.Status `mapstructure:"result"`
				}
				cfg.Level = "info"
				cfg.Result = bt.Success
				if err := in.Decode(&cfg); err != nil {
					return nil, err
				}
				var level slog.Level
				if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
					return nil, err
				}
				logger, message, result := in.Logger, cfg.Message, cfg.Result
				return bt.NewLeaf[struct{}](in.ID, logLeaf{
					emit: func(c bt.Context) {
						logger.Log(c.Context(), level, message, "node", c.Name(), "run", c.RunID())
					},
					result: result,
				}), nil
			},
		},
		"inverter": {
			Shape:       ShapeDecorator,
			Description: "Swaps the child's success and failure.",
			Build: func(in Input) (*bt.Node, error) {
				return decorators.Inverter(in.ID, in.Child()), nil
			},
		},
		"force": {
			Shape:       ShapeDecorator,
			Description: "Reports a fixed result once the child finishes.",
			Schema:      schema.Schema{"result": schema.Status()},
			Build: func(in Input) (*bt.Node, error) {
				cfg := struct {
					Result bt.Status `mapstructure:"result"`
				}{Result: bt.Success}
				if err := in.Decode(&cfg); err != nil {
					return nil, err
				}
				return decorators.Force(in.ID, cfg.Result, in.Child()), nil
			},
		},
		"repeat": {
			Shape:       ShapeDecorator,
			Description: "Runs the child to success a number of times. 0 repeats forever.",
			Schema:      schema.Schema{"times": schema.Int()},
			Build: func(in Input) (*bt.Node, error) {
				var cfg struct {
					Times int `mapstructure:"times"`
				}
				if err := in.Decode(&cfg); err != nil {
					return nil, err
				}
				return decorators.Repeat(in.ID, cfg.Times, in.Child()), nil
			},
		},
		"retry": {
			Shape:       ShapeDecorator,
			Description: "Reruns a failing child up to a number of attempts. 0 retries forever.",
			Schema:      schema.Schema{"attempts": schema.Int()},
			Build: func(in Input) (*bt.Node, error) {
				var cfg struct {
					Attempts int `mapstructure:"attempts"`
				}
				if err := in.Decode(&cfg); err != nil {
					return nil, err
				}
				return decorators.Retry(in.ID, cfg.Attempts, in.Child()), nil
			},
		},
	}
}

func constant(name string, status bt.Status) *bt.Node {
	return bt.Action(name, func(context.Context) bt.Status { return status })
}

type waitState struct {
	elapsed int
}

type waitLeaf struct {
	bt.BaseLeaf[waitState]
	ticks  int
	result bt.Status
}

func (w waitLeaf) Update(_ bt.Context, s *waitState) bt.Status {
	s.elapsed++
	if s.elapsed >= w.ticks {
		return w.result
	}
	return bt.Running
}

type logLeaf struct {
	bt.BaseLeaf[struct{}]
	emit   func(bt.Context)
	result bt.Status
}

func (l logLeaf) Update(c bt.Context, _ *struct{}) bt.Status {
	l.emit(c)
	return l.result
}
