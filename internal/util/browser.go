package util

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/sirupsen/logrus"

	"costetl/internal/config"
)

// statusPath 服务启动后默认打开的页面（导入状态 JSON）
const statusPath = "/api/status"

// ServiceURL 本机服务地址
func ServiceURL(port int) string {
	return fmt.Sprintf("http://localhost:%d", port)
}

// StatusURL 按服务配置拼出导入状态地址
func StatusURL(cfg config.ServerConfig) string {
	return ServiceURL(cfg.Port) + statusPath
}

// openerCommands 按平台列出依次尝试的打开方式
func openerCommands(goos, url string) [][]string {
	switch goos {
	case "windows":
		return [][]string{
			{"rundll32", "url.dll,FileProtocolHandler", url},
			{"explorer", url},
		}
	case "darwin":
		return [][]string{{"open", url}}
	default:
		return [][]string{
			{"xdg-open", url},
			{"sensible-browser", url},
			{"firefox", url},
			{"chromium-browser", url},
		}
	}
}

// Launcher 在浏览器中打开 costetl 服务
type Launcher struct {
	goos   string
	start  func(name string, args ...string) error
	logger logrus.FieldLogger
}

// NewLauncher 创建 Launcher；logger 为 nil 时使用标准 logger
func NewLauncher(logger logrus.FieldLogger) *Launcher {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Launcher{
		goos: runtime.GOOS,
		start: func(name string, args ...string) error {
			return exec.Command(name, args...).Start()
		},
		logger: logger,
	}
}

// OpenStatus 打开导入状态页，所有方式都失败时返回最后一个错误
func (l *Launcher) OpenStatus(cfg config.ServerConfig) error {
	url := StatusURL(cfg)
	log := l.logger.WithField("url", url)

	var lastErr error
	for _, c := range openerCommands(l.goos, url) {
		if err := l.start(c[0], c[1:]...); err != nil {
			log.WithError(err).WithField("opener", c[0]).Debug("browser opener failed")
			lastErr = err
			continue
		}
		log.WithField("opener", c[0]).Info("browser opened")
		return nil
	}
	if lastErr == nil {
		lastErr = errors.New("no browser opener available")
	}
	log.WithError(lastErr).Warn("could not open browser, visit the url manually")
	return lastErr
}
