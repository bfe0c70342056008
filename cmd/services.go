// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"

	"github.com/xataio/recordhub/cmd/config"
	"github.com/xataio/recordhub/internal/log/zerolog"
	pglib "github.com/xataio/recordhub/internal/postgres"
	pginstrumentation "github.com/xataio/recordhub/internal/postgres/instrumentation"
	"github.com/xataio/recordhub/pkg/dataset"
	"github.com/xataio/recordhub/pkg/dataset/bulk"
	datasetinstrumentation "github.com/xataio/recordhub/pkg/dataset/instrumentation"
	"github.com/xataio/recordhub/pkg/dataset/lifecycle"
	pgrecords "github.com/xataio/recordhub/pkg/dataset/postgres"
	"github.com/xataio/recordhub/pkg/dataset/schemafile"
	loglib "github.com/xataio/recordhub/pkg/log"
	"github.com/xataio/recordhub/pkg/otel"
	"github.com/xataio/recordhub/pkg/search"
	searchinstrumentation "github.com/xataio/recordhub/pkg/search/instrumentation"
	"github.com/xataio/recordhub/pkg/search/store"
)

// services holds the components shared by the dataset and records commands,
// wired from the parsed configuration.
type services struct {
	logger     loglib.Logger
	config     *config.Config
	schemas    dataset.SchemaStore
	records    dataset.RecordStore
	engine     search.Engine
	ingester   bulk.Ingester
	lifecycle  *lifecycle.Manager
	search     *search.Service
	closeFuncs []func() error
}

// newServices parses the configuration and builds the services. The caller
// must call close once done.
func newServices(ctx context.Context, instrumentationName string) (*services, error) {
	cfg, err := config.Parse()
	if err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	zlogger := zerolog.NewLogger(&zerolog.Config{
		LogLevel: cfg.LogLevel,
		Format:   cfg.LogFormat,
	})
	zerolog.SetGlobalLogger(zlogger)
	logger := zerolog.NewStdLogger(zlogger)

	s := &services{
		logger: logger,
		config: cfg,
	}

	provider, err := otel.NewInstrumentationProvider(cfg.InstrumentationConfig())
	if err != nil {
		return nil, fmt.Errorf("initialising instrumentation provider: %w", err)
	}
	s.closeFuncs = append(s.closeFuncs, provider.Close)
	instrumentation := provider.NewInstrumentation(instrumentationName)

	if err := s.initStores(ctx, instrumentation); err != nil {
		s.close()
		return nil, err
	}

	if err := s.initSearch(instrumentation); err != nil {
		s.close()
		return nil, err
	}

	coordinator := bulk.NewCoordinator(s.records, s.engine, cfg.Ingestion, bulk.WithLogger(logger))
	s.ingester, err = datasetinstrumentation.NewIngester(coordinator, instrumentation)
	if err != nil {
		s.close()
		return nil, err
	}

	s.lifecycle = lifecycle.NewManager(s.schemas, s.engine, lifecycle.WithLogger(logger))
	s.search = search.NewService(s.engine, s.records, search.WithServiceLogger(logger))
	return s, nil
}

func (s *services) initStores(ctx context.Context, instrumentation *otel.Instrumentation) error {
	var err error
	s.schemas, err = schemafile.NewStore(schemafile.Config{Dir: s.config.SchemaDir}, schemafile.WithLogger(s.logger))
	if err != nil {
		return fmt.Errorf("creating schema store: %w", err)
	}

	pool, err := pglib.NewConnPool(ctx, s.config.PostgresURL)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close(ctx)
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	querier, err := pginstrumentation.NewQuerier(pool, instrumentation)
	if err != nil {
		pool.Close(ctx)
		return err
	}
	recordStore := pgrecords.NewStoreWithQuerier(querier)
	s.closeFuncs = append(s.closeFuncs, recordStore.Close)
	s.records = datasetinstrumentation.NewRecordStore(recordStore, instrumentation)
	return nil
}

func (s *services) initSearch(instrumentation *otel.Instrumentation) error {
	searchStore, err := store.NewStore(s.config.StoreConfig(), store.WithLogger(s.logger))
	if err != nil {
		return fmt.Errorf("creating search store: %w", err)
	}
	retrier := search.NewEngineRetrier(searchStore, s.config.RetryConfig(), search.WithRetrierLogger(s.logger))
	s.engine, err = searchinstrumentation.NewEngine(retrier, instrumentation)
	return err
}

func (s *services) dataset(ctx context.Context, id string) (*dataset.Dataset, error) {
	datasetID, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	return s.schemas.GetDataset(ctx, datasetID)
}

func (s *services) close() {
	// close in reverse creation order
	for i := len(s.closeFuncs) - 1; i >= 0; i-- {
		if err := s.closeFuncs[i](); err != nil {
			s.logger.Error(err, "closing service")
		}
	}
}
