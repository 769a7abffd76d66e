package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"

	"costetl/internal/api"
	"costetl/internal/importer"
	"costetl/internal/server"
	"costetl/internal/util"
)

func newServeCmd() *cobra.Command {
	var (
		port        int
		devMode     bool
		openBrowser bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务（导入、查询、对账、/metrics）",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			a, err := openApp(ctx, true)
			if err != nil {
				return err
			}
			defer a.Close()
			if port > 0 {
				a.cfg.Server.Port = port
			}

			reg := prometheus.NewRegistry()
			reg.MustRegister(
				collectors.NewGoCollector(),
				collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			)
			coordinator, err := a.coordinator(importer.NewMetrics(reg))
			if err != nil {
				return err
			}

			uploadDir := filepath.Join(filepath.Dir(a.cfg.DB.Path), "uploads")
			h := api.NewHandler(a.store, coordinator, a.matcher, uploadDir, a.log.Entry())
			srv := server.NewServer(h, reg, a.log.Entry(), devMode)

			if openBrowser {
				_ = util.NewLauncher(a.log.Entry()).OpenStatus(a.cfg.Server)
			}

			return srv.Run(ctx, fmt.Sprintf(":%d", a.cfg.Server.Port))
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "服务端口（覆盖配置）")
	cmd.Flags().BoolVar(&devMode, "dev", false, "开发模式（gin debug 日志）")
	cmd.Flags().BoolVar(&openBrowser, "open", false, "启动后打开浏览器")
	return cmd
}
