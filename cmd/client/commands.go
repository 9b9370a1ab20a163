package main

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gitlab.com/dirk.krummacker/static-website/internal/apiclient"
	"gitlab.com/dirk.krummacker/static-website/internal/config"
	"gitlab.com/dirk.krummacker/static-website/internal/contactform"
	"gitlab.com/dirk.krummacker/static-website/internal/logging"
	"gitlab.com/dirk.krummacker/static-website/internal/storage"
	"gitlab.com/dirk.krummacker/static-website/pkg/model"
)

// env holds what every sub command needs; it is filled in PersistentPreRunE.
type env struct {
	cfg     *config.Config
	logger  *zap.Logger
	store   storage.Storage
	closeFn func() error
	verbose bool

	// openStore is storage.Open; tests replace it.
	openStore func(ctx context.Context, kind, path, redisURL string) (storage.Storage, func() error, error)
}

// newRootCmd returns the command tree and its environment. The caller must call close on the
// environment after Execute, whether or not the command failed.
func newRootCmd() (*cobra.Command, *env) {
	e := &env{openStore: storage.Open}
	root := &cobra.Command{
		Use:           "contact-client",
		Short:         "Send contact form messages to the website backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.load(cmd.Context())
		},
	}
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "log at debug level")
	root.AddCommand(newSendCmd(e), newPendingCmd(e), newFlushCmd(e), newBenchCmd(e))
	return root, e
}

// close releases the fallback storage and flushes the logger.
func (e *env) close() error {
	var err error
	if e.closeFn != nil {
		err = e.closeFn()
		e.closeFn = nil
	}
	if e.logger != nil {
		_ = e.logger.Sync()
	}
	return err
}

func (e *env) load(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level := cfg.LogLevel
	if e.verbose {
		level = "debug"
	}
	logger, err := logging.NewConsole(level)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	store, closeFn, err := e.openStore(ctx, cfg.FallbackBackend, cfg.FallbackFile, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("could not open fallback storage: %w", err)
	}
	e.cfg, e.logger, e.store, e.closeFn = cfg, logger, store, closeFn
	return nil
}

func (e *env) client() *apiclient.Client {
	return apiclient.New(e.cfg.APIBaseURL, apiclient.WithHTTPClient(&http.Client{Timeout: e.cfg.HTTPTimeout}))
}

func newSendCmd(e *env) *cobra.Command {
	var name, email, message string
	cmd := &cobra.Command{
		Use:   "send",
		Short: "Submit one message the way the website's contact form does",
		RunE: func(cmd *cobra.Command, args []string) error {
			form := newTerminalForm(cmd.OutOrStdout(), name, email, message)
			opts := []contactform.Option{contactform.WithLogger(e.logger)}
			if e.cfg.FallbackPolicy == config.PolicyLocal {
				opts = append(opts, contactform.WithFallback(storage.NewSubmissions(e.store)))
			}
			outcome := contactform.New(form, form, e.client(), opts...).Submit(cmd.Context())
			if outcome == contactform.Failed {
				return fmt.Errorf("message not sent")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "your name")
	cmd.Flags().StringVar(&email, "email", "", "your email address")
	cmd.Flags().StringVar(&message, "message", "", "the message")
	return cmd
}

func newPendingCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "pending",
		Short: "List messages kept in fallback storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := storage.NewSubmissions(e.store).List(cmd.Context())
			if err != nil {
				return err
			}
			for _, r := range records {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %s <%s>  %s\n", r.Timestamp, r.Name, r.Email, r.Message)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d pending\n", len(records))
			return nil
		},
	}
}

// newFlushCmd resends every stored message once. Delivered messages are removed from storage
// in a single write; messages the backend still does not accept, and any stored meanwhile,
// stay.
func newFlushCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "flush",
		Short: "Resend messages kept in fallback storage",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			submissions := storage.NewSubmissions(e.store)
			records, err := submissions.List(ctx)
			if err != nil {
				return err
			}
			client := e.client()
			delivered := make(map[model.Record]int)
			sent := 0
			for _, r := range records {
				if _, err := client.Submit(ctx, r.Submission()); err != nil {
					e.logger.Warn("resend failed", zap.String("timestamp", r.Timestamp), zap.Error(err))
					continue
				}
				delivered[r]++
				sent++
			}
			if sent > 0 {
				err := submissions.Retain(ctx, func(r model.Record) bool {
					if delivered[r] > 0 {
						delivered[r]--
						return false
					}
					return true
				})
				if err != nil {
					return fmt.Errorf("%d sent but still stored: %w", sent, err)
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d sent, %d pending\n", sent, len(records)-sent)
			return nil
		},
	}
}

// newBenchCmd posts batches of messages and prints the average latency per batch size in
// microseconds.
func newBenchCmd(e *env) *cobra.Command {
	var sizes string
	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Measure the latency of the contact endpoint",
		RunE: func(cmd *cobra.Command, args []string) error {
			loops, err := parseSizes(sizes)
			if err != nil {
				return err
			}
			client := e.client()
			s := model.Submission{Name: "Marcus Antonius", Email: "marcus@example.com", Message: "Ave"}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out)
			fmt.Fprintln(out, "  Elements      POST")
			fmt.Fprintln(out, "--------------------")
			for _, n := range loops {
				var duration time.Duration
				for i := 0; i < n; i++ {
					before := time.Now()
					if _, err := client.Submit(cmd.Context(), s); err != nil {
						return err
					}
					duration += time.Since(before)
				}
				fmt.Fprintf(out, "%10d%10d\n", n, duration.Microseconds()/int64(n))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sizes, "sizes", "1000,5000,10000", "comma separated batch sizes")
	return cmd
}

func parseSizes(sizes string) ([]int, error) {
	var result []int
	for _, part := range strings.Split(sizes, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid batch size %q", part)
		}
		result = append(result, n)
	}
	return result, nil
}
