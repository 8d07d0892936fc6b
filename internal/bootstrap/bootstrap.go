package bootstrap

import (
	"context"
	"fmt"
	"io"

	hclog "github.com/hashicorp/go-hclog"

	depsinadapter "dropkit/internal/modules/deps/adapter/in"
	depsoutadapter "dropkit/internal/modules/deps/adapter/out"
	depsservice "dropkit/internal/modules/deps/service"
	depsusecase "dropkit/internal/modules/deps/usecase"
	dispatchinadapter "dropkit/internal/modules/dispatch/adapter/in"
	dispatchoutadapter "dropkit/internal/modules/dispatch/adapter/out"
	dispatchservice "dropkit/internal/modules/dispatch/service"
	dispatchusecase "dropkit/internal/modules/dispatch/usecase"
	journalinadapter "dropkit/internal/modules/journal/adapter/in"
	journaloutadapter "dropkit/internal/modules/journal/adapter/out"
	journalservice "dropkit/internal/modules/journal/service"
	journalusecase "dropkit/internal/modules/journal/usecase"
	optionsinadapter "dropkit/internal/modules/options/adapter/in"
	optionsoutadapter "dropkit/internal/modules/options/adapter/out"
	optionsservice "dropkit/internal/modules/options/service"
	optionsusecase "dropkit/internal/modules/options/usecase"
	registryinadapter "dropkit/internal/modules/registry/adapter/in"
	registryoutadapter "dropkit/internal/modules/registry/adapter/out"
	registryin "dropkit/internal/modules/registry/port/in"
	registryservice "dropkit/internal/modules/registry/service"
	registryusecase "dropkit/internal/modules/registry/usecase"
	"dropkit/internal/platform/clock"
	"dropkit/internal/platform/config"
	"dropkit/internal/platform/id"
)

type App struct {
	DispatchCLI dispatchinadapter.CLIHandler
	OptionsCLI  optionsinadapter.CLIHandler
	DepsCLI     depsinadapter.CLIHandler
	RegistryCLI registryinadapter.CLIHandler
	JournalCLI  journalinadapter.CLIHandler

	Registry registryin.Usecase
	Deps     *depsservice.RegistryService
}

// New wires every module. out is where run results are emitted; the CLI
// passes stdout.
func New(cfg config.Config, out io.Writer, log hclog.Logger) (*App, error) {
	if log == nil {
		log = hclog.NewNullLogger()
	}
	clk := clock.SystemClock{}
	ids := id.RandomHex{}

	optionsSvc := optionsservice.NewOptionsService(optionsoutadapter.NewYAMLSchemaDecoder())
	optionsUC := optionsusecase.NewInteractor(optionsSvc)

	depsSvc := depsservice.NewRegistryService(
		depsoutadapter.NewHTTPFetcher(),
		depsoutadapter.NewArchiveExtractor(),
		cfg.DepsDir,
		log.Named("deps"),
	)
	depsUC := depsusecase.NewInteractor(depsSvc)

	registrySvc := registryservice.NewRegistryService(
		registryoutadapter.NewYAMLManifestStore(cfg.BasePath, cfg.ProcessorsPath),
		registryoutadapter.NewGRPCHost(),
		registryoutadapter.NewOptionsSchemaDecoder(optionsUC),
		log.Named("registry"),
	)
	registryUC := registryusecase.NewInteractor(registrySvc)

	journalStore, err := journaloutadapter.NewSQLiteStore(cfg.JournalDBPath)
	if err != nil {
		return nil, fmt.Errorf("new journal store: %w", err)
	}
	journalSvc := journalservice.NewJournalService(journalStore, clk, ids, log.Named("journal"))
	journalUC := journalusecase.NewInteractor(journalSvc)

	dispatchSvc := dispatchservice.NewDispatchService(
		dispatchoutadapter.NewOSWalker(),
		dispatchoutadapter.NewHeadlessModals(),
		clk,
		ids,
		log.Named("dispatch"),
	)
	dispatchUC := dispatchusecase.NewInteractor(
		dispatchSvc,
		registryUC,
		depsUC,
		journalUC,
		dispatchoutadapter.NewConsoleEmitter(out),
		dispatchoutadapter.NewLogProgress(log.Named("dispatch"), "cycle"),
	)

	return &App{
		DispatchCLI: dispatchinadapter.NewCLIHandler(dispatchUC),
		OptionsCLI:  optionsinadapter.NewCLIHandler(optionsUC),
		DepsCLI:     depsinadapter.NewCLIHandler(depsUC),
		RegistryCLI: registryinadapter.NewCLIHandler(registryUC),
		JournalCLI:  journalinadapter.NewCLIHandler(journalUC),
		Registry:    registryUC,
		Deps:        depsSvc,
	}, nil
}

// RegisterDeclaredDependencies gives every dependency named by a
// registered processor a default path-lookup loader, unless something
// already registered a richer one. Best effort: a broken manifest is a
// doctor problem, not a wiring problem.
func (a *App) RegisterDeclaredDependencies(ctx context.Context) {
	processors, err := a.Registry.Registered(ctx)
	if err != nil {
		return
	}
	for _, proc := range processors {
		names := append([]string{}, proc.Config.Dependencies...)
		names = append(names, proc.Config.OptionalDependencies...)
		for _, name := range names {
			_ = a.Deps.Register(depsservice.PathBinaryRegistration(name))
		}
	}
}
