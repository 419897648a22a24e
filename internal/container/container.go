package container

import (
	"blog-edge/internal/config"
	"blog-edge/internal/opengraph"
	"blog-edge/internal/service"
	"blog-edge/pkg/assets"
	"blog-edge/pkg/kv"
	"blog-edge/pkg/logger"
)

// Services groups all application services
type Services struct {
	Metadata   *service.MetadataService
	Catalog    *service.CatalogService
	Metrics    *service.MetricsService
	Newsletter *service.NewsletterService
	Feedback   *service.FeedbackService
}

// Container holds all application dependencies
type Container struct {
	Config   *config.Config
	Logger   *logger.Logger
	KV       *kv.Client
	Assets   assets.Fetcher
	Site     opengraph.Site
	Services *Services
}

// New creates a new dependency injection container
func New(cfg *config.Config, log *logger.Logger) (*Container, error) {
	kvClient, err := kv.NewClient(cfg.RedisURL, cfg.Environment, log.Logger)
	if err != nil {
		return nil, err
	}
	log.Info("KV client initialized successfully")

	fetcher := assets.NewClient(cfg.AssetOrigin, log)

	site := opengraph.Site{
		BaseURL:       cfg.SiteBaseURL,
		Name:          cfg.SiteName,
		TwitterHandle: cfg.TwitterHandle,
		DefaultAuthor: cfg.DefaultAuthor,
	}

	metadataService := service.NewMetadataService(fetcher, log)
	catalogService := service.NewCatalogService(metadataService, site, log)
	metricsService := service.NewMetricsService(kvClient, log)
	resendClient := service.NewResendClient(cfg.ResendAPIKey, log)
	newsletterService := service.NewNewsletterService(kvClient, resendClient, cfg, log)
	feedbackService := service.NewFeedbackService(kvClient, log)

	return &Container{
		Config: cfg,
		Logger: log,
		KV:     kvClient,
		Assets: fetcher,
		Site:   site,
		Services: &Services{
			Metadata:   metadataService,
			Catalog:    catalogService,
			Metrics:    metricsService,
			Newsletter: newsletterService,
			Feedback:   feedbackService,
		},
	}, nil
}

// GetLogger returns the logger
func (c *Container) GetLogger() *logger.Logger {
	return c.Logger
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.Config
}

// GetKVClient returns the KV client
func (c *Container) GetKVClient() *kv.Client {
	return c.KV
}
