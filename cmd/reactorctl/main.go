// Command reactorctl is a small demonstration CLI for the reactor library:
// it builds the "linear" greeting reactor from the Builder API and runs it,
// optionally fanning out several concurrent instances sharing one
// concurrency pool. It is illustrative only — no DSL, no bundled step
// catalog, no diagram rendering; those are external collaborators.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/alexisbeaulieu97/reactor/internal/model"
	reactorlogging "github.com/alexisbeaulieu97/reactor/internal/logging"
	"github.com/alexisbeaulieu97/reactor/internal/ports"
	"github.com/alexisbeaulieu97/reactor/pkg/reactor"
)

type runArgs struct {
	Whom  string `validate:"required"`
	Count int    `validate:"min=1"`
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var whom string
	var count int

	root := &cobra.Command{
		Use:   "reactorctl",
		Short: "Run a small demonstration reactor",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGreetings(cmd.Context(), whom, count)
		},
	}
	root.Flags().StringVar(&whom, "whom", "Dear Reader", "who to greet")
	root.Flags().IntVar(&count, "count", 1, "how many concurrent reactor instances to run")
	return root
}

func runGreetings(ctx context.Context, whom string, count int) error {
	validate := validator.New()
	rargs := runArgs{Whom: whom, Count: count}
	if err := validate.Struct(rargs); err != nil {
		return fmt.Errorf("invalid arguments: %w", err)
	}

	logger, err := reactorlogging.New(reactorlogging.Options{Level: "info", Component: "reactorctl"})
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	poolKey := reactor.AllocatePool(ctx, count)
	defer reactor.ReleasePool(poolKey)

	group, gctx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		idx := i
		group.Go(func() error {
			return runOne(gctx, logger, poolKey, whom, idx)
		})
	}
	return group.Wait()
}

func runOne(ctx context.Context, logger ports.Logger, poolKey reactor.PoolKey, whom string, idx int) error {
	r := reactor.New(fmt.Sprintf("greet-%d", idx))

	var err error
	r, err = reactor.AddInput(r, "whom")
	if err != nil {
		return err
	}
	r, err = reactor.AddStep(r, model.StepDef{
		Name:      "greet",
		Ref:       model.NewRef(),
		Arguments: []reactor.Argument{{Name: "whom", Source: model.Input("whom")}},
		Impl:      greetStep{},
		Async:     model.AsyncNever,
	})
	if err != nil {
		return err
	}
	r, err = reactor.SetReturn(r, "greet")
	if err != nil {
		return err
	}

	outcome := reactor.Run(ctx, r, map[string]interface{}{"whom": whom}, nil, reactor.RunOptions{
		ConcurrencyKey: string(poolKey),
		Logger:         logger,
		HaltTimeout:    5 * time.Second,
	})
	if outcome.Err != nil {
		return outcome.Err
	}
	logger.Info(ctx, "greeting complete", "reactor_id", r.ID, "value", outcome.Value)
	return nil
}

type greetStep struct{}

func (greetStep) Run(ctx context.Context, args, reactorCtx map[string]interface{}) model.RunResult {
	whom, _ := args["whom"].(string)
	return model.Ok(strings.ToUpper(whom))
}
