package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/krobus00/symbol-store/internal/config"
	"github.com/krobus00/symbol-store/internal/constant"
	"github.com/krobus00/symbol-store/internal/entity"
	"github.com/krobus00/symbol-store/internal/infrastructure"
	"github.com/krobus00/symbol-store/internal/service/symbol"
	"github.com/krobus00/symbol-store/internal/util"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

var (
	errNothingLoaded = errors.New("no data found, run fetch first")
	errSubsetMerge   = errors.New("merging a subset of exchanges needs --output")
)

func StartFetch(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	output, _ := cmd.Flags().GetString("output")
	publish, _ := cmd.Flags().GetBool("publish")

	store, closeStorage := newStorage(ctx)
	defer closeStorage()

	opts, closeNotifier := notifierOptions(ctx, publish)
	defer closeNotifier()

	symbolStore := newSymbolStore(store, opts...)

	exchanges := parseExchanges(args)
	if len(exchanges) == 0 {
		exchanges = symbolStore.ListExchanges()
	}

	result := symbolStore.FetchAndPersist(ctx, exchanges, output)
	reportMerge(cmd, result)
}

func StartMerge(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	rawExchanges, _ := cmd.Flags().GetStringSlice("exchanges")
	output, _ := cmd.Flags().GetString("output")
	publish, _ := cmd.Flags().GetBool("publish")

	store, closeStorage := newStorage(ctx)
	defer closeStorage()

	opts, closeNotifier := notifierOptions(ctx, publish)
	defer closeNotifier()

	symbolStore := newSymbolStore(store, opts...)

	exchanges := parseExchanges(rawExchanges)
	if len(exchanges) == 0 {
		exchanges = symbolStore.ListExchanges()
	}
	if mergedName(output) == constant.DefaultMergedFile && !coversAll(exchanges, symbolStore.ListExchanges()) {
		util.ContinueOrFatal(appLogger, errSubsetMerge)
	}

	result := symbolStore.MergeAndPersist(ctx, exchanges, output)
	reportMerge(cmd, result)
}

func StartShow(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	output, _ := cmd.Flags().GetString("output")

	store, closeStorage := newStorage(ctx)
	defer closeStorage()

	symbolStore := newSymbolStore(store)

	if len(args) == 0 {
		symbols, ok := symbolStore.LoadMergedSymbolsFrom(ctx, output)
		if !ok {
			util.ContinueOrFatal(appLogger, errNothingLoaded)
		}
		for _, s := range symbols {
			fmt.Fprintln(cmd.OutOrStdout(), s)
		}
		return
	}

	exchange := parseExchanges(args[:1])
	if len(exchange) == 0 {
		util.ContinueOrFatal(appLogger, entity.ErrExchangeRequired)
	}

	rows, ok := symbolStore.LoadExchangeListing(ctx, exchange[0])
	if !ok {
		util.ContinueOrFatal(appLogger, errNothingLoaded)
	}
	util.ContinueOrFatal(appLogger, printJSON(cmd.OutOrStdout(), rows))
}

func StartListExchanges(cmd *cobra.Command, args []string) {
	for _, exchange := range configuredExchanges() {
		fmt.Fprintln(cmd.OutOrStdout(), exchange)
	}
}

// StartPublish announces the merged set already on disk without fetching.
func StartPublish(cmd *cobra.Command, args []string) {
	ctx := cmd.Context()
	output, _ := cmd.Flags().GetString("output")

	store, closeStorage := newStorage(ctx)
	defer closeStorage()

	symbolStore := newSymbolStore(store)
	symbols, ok := symbolStore.LoadMergedSymbolsFrom(ctx, output)
	if !ok {
		util.ContinueOrFatal(appLogger, errNothingLoaded)
	}

	nc, js, err := infrastructure.NewJetstream(appLogger, config.Env.NatsJetstream)
	util.ContinueOrFatal(appLogger, err)
	defer closeNats(nc)

	notifier := symbol.NewJetstreamNotifier(js, appLogger)
	initPublishers(ctx, notifier)

	result := entity.MergeResult{
		Output:  constant.MergedPath(mergedName(output)),
		Symbols: len(symbols),
		Merged:  symbolStore.ListExchanges(),
		Written: true,
	}
	util.ContinueOrFatal(appLogger, notifier.NotifyMerged(ctx, result, symbols))

	appLogger.WithField("symbols", len(symbols)).Info("published merged symbols")
}

func notifierOptions(ctx context.Context, publish bool) ([]symbol.Option, func()) {
	if !publish {
		return nil, func() {}
	}

	nc, js, err := infrastructure.NewJetstream(appLogger, config.Env.NatsJetstream)
	util.ContinueOrFatal(appLogger, err)

	notifier := symbol.NewJetstreamNotifier(js, appLogger)
	initPublishers(ctx, notifier)

	return []symbol.Option{symbol.WithNotifier(notifier)}, func() { closeNats(nc) }
}

func initPublishers(ctx context.Context, publishers ...entity.Publisher) {
	for _, v := range publishers {
		util.ContinueOrFatal(appLogger, v.JetstreamEventInit(ctx))
	}
}

func closeNats(nc *nats.Conn) {
	if err := infrastructure.CloseJetstream(nc); err != nil {
		appLogger.Warnf("failed to close nats connection: %v", err)
	}
}

func mergedName(output string) string {
	if output = strings.TrimSpace(output); output == "" {
		return constant.DefaultMergedFile
	}
	return output
}

// coversAll reports whether exchanges names every known exchange.
func coversAll(exchanges, known []entity.ExchangeName) bool {
	for _, exchange := range known {
		if !slices.Contains(exchanges, exchange) {
			return false
		}
	}
	return true
}

func reportMerge(cmd *cobra.Command, result entity.MergeResult) {
	if !result.Written {
		util.ContinueOrFatal(appLogger, fmt.Errorf("merged symbols were not written: %w", result.WriteErr))
	}
	if result.Partial() {
		appLogger.WithField("skipped", result.Skipped).Warn("some exchanges were skipped")
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%d symbols written to %s\n", result.Symbols, result.Output)
}
