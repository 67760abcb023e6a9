package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/autostream-ai/leadflow/agent/agents/controller"
	"github.com/autostream-ai/leadflow/agent/classifier"
	contractx "github.com/autostream-ai/leadflow/agent/contract"
	"github.com/autostream-ai/leadflow/agent/lead"
	"github.com/autostream-ai/leadflow/agent/prompt"
	"github.com/autostream-ai/leadflow/agent/retriever"
	statex "github.com/autostream-ai/leadflow/agent/state"
	"github.com/autostream-ai/leadflow/api"
	configx "github.com/autostream-ai/leadflow/pkg/config"
	logx "github.com/autostream-ai/leadflow/pkg/logger"
	openrouterx "github.com/autostream-ai/leadflow/pkg/openrouter"
	qstashx "github.com/autostream-ai/leadflow/pkg/qstash"
)

type AppConfig struct {
	SessionBackend string `envconfig:"SESSION_BACKEND" split_words:"true" default:"memory"`
	LeadBackend    string `envconfig:"LEAD_BACKEND" split_words:"true" default:"postgres"`
	NotifyLeads    bool   `envconfig:"NOTIFY_LEADS" split_words:"true" default:"false"`
	NotifyURL      string `envconfig:"NOTIFY_URL" split_words:"true"`
}

type EmbeddingConfig struct {
	APIKey  string `envconfig:"API_KEY" split_words:"true" required:"true"`
	BaseURL string `envconfig:"BASE_URL" split_words:"true" default:"https://api.openai.com/v1"`
	Model   string `envconfig:"MODEL" split_words:"true" default:"text-embedding-3-small"`
}

func main() {
	logCfg := configx.MustNew[logx.Config]("LOG")
	logx.Init(*logCfg)

	appCfg := configx.MustNew[AppConfig]("APP")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	openRouterCfg := configx.MustNew[openrouterx.Config]("OPENROUTER")
	chatModel, err := openRouterCfg.New(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create chat model")
	}

	prompts := prompt.LoadPromptSet()
	intentClassifier, err := classifier.New(ctx, chatModel, prompts.Classifier)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build intent classifier")
	}

	embedCfg := configx.MustNew[EmbeddingConfig]("OPENAI")
	embedClient := openrouterx.NewClient(openrouterx.Config{
		APIKey:  embedCfg.APIKey,
		BaseURL: embedCfg.BaseURL,
	})
	if embedClient == nil {
		log.Fatal().Msg("failed to initialize embeddings client")
	}

	embedder := retriever.NewOpenAIEmbedder(embedClient, embedCfg.Model)
	index, err := retriever.NewIndex(ctx, embedder)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to index knowledge base")
	}
	log.Info().Int("chunks", index.Len()).Msg("knowledge base indexed")

	var store statex.Store
	switch appCfg.SessionBackend {
	case "upstash":
		upstashCfg := configx.MustNew[statex.UpstashRedisConfig]("UPSTASH")
		store, err = statex.NewUpstashRedisStore(*upstashCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to create upstash session store")
		}
		log.Info().Msg("session store: upstash redis")
	case "memory":
		store = statex.NewMemoryStore()
		log.Info().Msg("session store: in-memory")
	default:
		log.Fatal().Str("backend", appCfg.SessionBackend).Msg("unknown session backend")
	}

	var (
		sink      contractx.LeadSink
		directory contractx.LeadDirectory
	)
	switch appCfg.LeadBackend {
	case "postgres":
		pgCfg := configx.MustNew[lead.PostgresConfig]("POSTGRES")
		repo, err := lead.NewPostgres(ctx, *pgCfg)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect lead storage")
		}
		defer func() {
			if closeErr := repo.Close(); closeErr != nil {
				log.Error().Err(closeErr).Msg("failed to close lead storage")
			}
		}()
		sink = repo
		directory = repo
		log.Info().Msg("lead storage: postgres")
	case "log":
		sink = lead.LogSink{}
		log.Info().Msg("lead storage: log only")
	default:
		log.Fatal().Str("backend", appCfg.LeadBackend).Msg("unknown lead backend")
	}

	if appCfg.NotifyLeads {
		if appCfg.NotifyURL == "" {
			log.Fatal().Msg("APP_NOTIFY_URL is required when lead notifications are enabled")
		}
		qstashCfg := configx.MustNew[qstashx.Config]("QSTASH")
		sink = lead.NewNotifyingSink(sink, qstashx.MustNew(*qstashCfg), appCfg.NotifyURL)
		log.Info().Str("destination", appCfg.NotifyURL).Msg("lead notifications enabled")
	}

	ctrl, err := controller.New(store, intentClassifier, index, sink)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build dialogue controller")
	}

	serverCfg := configx.MustNew[api.ServerConfig]("SERVER")
	server := api.NewServer(*serverCfg, api.NewHandler(ctrl, directory))

	if err := server.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("http server failed")
	}
	log.Info().Msg("server stopped")
}
