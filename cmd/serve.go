package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/spigell/interview-coach/internal/interview"
	"github.com/spigell/interview-coach/internal/metrics"
	"github.com/spigell/interview-coach/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interview coach web server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default :8080)")
	_ = viper.BindPFlag("server.listen-address", serveCmd.Flags().Lookup("listen"))
}

func serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	config, err := getConfig(viper.GetViper())
	if err != nil {
		return err
	}

	log.Info("starting the interview coach", zap.String("version", version), zap.String("commit", commit))

	observer, err := metrics.NewPrometheusObserver("", prometheus.DefaultRegisterer)
	if err != nil {
		return err
	}

	avatarClient, err := buildAvatar(config.Avatar, log, observer)
	if err != nil {
		log.Error("configuring avatar provider", zap.Error(err),
			zap.String("hint", "set TAVUS_API_KEY or avatar.api-key-file in the configuration file"))
		return err
	}

	interviewCoach, err := buildCoach(ctx, config.LLM, log, observer)
	if err != nil {
		return err
	}

	srv, err := web.New(web.Config{
		ListenAddress:  config.Server.ListenAddress,
		SessionTTL:     config.Server.SessionTTL,
		MaxSessions:    config.Server.MaxSessions,
		MaxUploadBytes: config.Server.MaxUploadBytes,
		SecureCookies:  config.Server.SecureCookies,
		WebhookToken:   config.Server.WebhookToken,
	}, web.Deps{
		Avatar: avatarClient,
		Coach:  interviewCoach,
		Interview: interview.Config{
			ReplicaID:       config.Avatar.ReplicaID,
			Properties:      config.Interview.Properties,
			EndConversation: config.Interview.EndConversationOnExit,
			TeardownTimeout: config.Interview.TeardownTimeout,
		},
		Logger:   log.Named("web"),
		Observer: observer,
	})
	if err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(srv.ListenAndServe)
	g.Go(func() error {
		<-gctx.Done()
		return srv.Shutdown(context.WithoutCancel(ctx))
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped", zap.Error(err))
		return err
	}

	log.Info("server stopped")
	return nil
}
