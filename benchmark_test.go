package piquouze

import (
	"context"
	"testing"

	"github.com/samber/do/v2"
	"go.uber.org/dig"
	"go.uber.org/fx"
)

type (
	benchConfig struct {
		Host string
		Port int
	}

	benchLogger struct {
		Level string
	}

	benchDatabase struct {
		Config *benchConfig
		Logger *benchLogger
	}

	benchService struct {
		DB     *benchDatabase
		Logger *benchLogger
	}
)

func newBenchDatabase(cfg *benchConfig, log *benchLogger) *benchDatabase {
	return &benchDatabase{Config: cfg, Logger: log}
}

func newBenchService(db *benchDatabase, log *benchLogger) *benchService {
	return &benchService{DB: db, Logger: log}
}

func chainContainer(policy Policy) *Container {
	c := New()
	_ = c.RegisterValue("config", &benchConfig{Host: "localhost", Port: 8080})
	_ = c.RegisterValue("logger", &benchLogger{Level: "info"})
	_ = c.RegisterFactory("database", Func(newBenchDatabase, "config", "logger"), policy)
	_ = c.RegisterFactory("service", Func(newBenchService, "database", "logger"), policy)
	return c
}

func BenchmarkGet_Value_Piquouze(b *testing.B) {
	c := New()
	_ = c.RegisterValue("config", &benchConfig{Host: "localhost", Port: 8080})

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = Get[*benchConfig](c, "config")
	}
}

func BenchmarkInject_Chain_Piquouze(b *testing.B) {
	c := chainContainer(PerInjection)
	target := Arrow(func(s *benchService) *benchService { return s }, "service")

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		f, _ := c.Inject(target, nil)
		_, _ = f()
	}
}

func BenchmarkInject_ChainPerContainer_Piquouze(b *testing.B) {
	c := chainContainer(PerContainer)
	target := Arrow(func(s *benchService) *benchService { return s }, "service")

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		f, _ := c.Inject(target, nil)
		_, _ = f()
	}
}

func BenchmarkInjected_Call_Piquouze(b *testing.B) {
	c := chainContainer(Never)
	f, _ := c.Inject(Arrow(func(s *benchService) *benchService { return s }, "service"), nil)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = f()
	}
}

func BenchmarkInvoke_Chain_Do(b *testing.B) {
	injector := do.New()
	do.ProvideValue(injector, &benchConfig{Host: "localhost", Port: 8080})
	do.ProvideValue(injector, &benchLogger{Level: "info"})
	do.Provide(injector, func(i do.Injector) (*benchDatabase, error) {
		return newBenchDatabase(do.MustInvoke[*benchConfig](i), do.MustInvoke[*benchLogger](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (*benchService, error) {
		return newBenchService(do.MustInvoke[*benchDatabase](i), do.MustInvoke[*benchLogger](i)), nil
	})

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = do.Invoke[*benchService](injector)
	}
}

func BenchmarkInvoke_Chain_Dig(b *testing.B) {
	c := dig.New()
	_ = c.Provide(func() *benchConfig { return &benchConfig{Host: "localhost", Port: 8080} })
	_ = c.Provide(func() *benchLogger { return &benchLogger{Level: "info"} })
	_ = c.Provide(newBenchDatabase)
	_ = c.Provide(newBenchService)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = c.Invoke(func(*benchService) {})
	}
}

func BenchmarkStartup_Chain_Fx(b *testing.B) {
	ctx := context.Background()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		var s *benchService
		app := fx.New(
			fx.NopLogger,
			fx.Provide(
				func() *benchConfig { return &benchConfig{Host: "localhost", Port: 8080} },
				func() *benchLogger { return &benchLogger{Level: "info"} },
				newBenchDatabase,
				newBenchService,
			),
			fx.Populate(&s),
		)
		_ = app.Start(ctx)
		_ = app.Stop(ctx)
	}
}

func BenchmarkStartup_Chain_Piquouze(b *testing.B) {
	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c := chainContainer(PerContainer)
		_, _ = Get[*benchService](c, "service")
	}
}
