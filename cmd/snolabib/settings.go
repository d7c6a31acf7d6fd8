package main

import (
	"os"
	"strconv"
	"time"

	"github.com/manuel-freire/snolabib/internal/config"
	"github.com/manuel-freire/snolabib/internal/render"
)

// Flag values shared by the pipeline commands. Each command registers
// only the flags it needs; resolution order is flag, then environment,
// then global config, then default.
var (
	authorsFile  string
	bibFile      string
	htmlFile     string
	templateFile string
	outputFile   string
	citeprocPath string
	workDir      string
	delayMillis  int
	firstYear    int
	lastYear     int
)

// Environment variable names honored alongside the global config.
const (
	envCiteproc = "SNOLABIB_CITEPROC"
	envTemplate = "SNOLABIB_TEMPLATE"
	envDelayMS  = "SNOLABIB_DELAY_MS"
	envWorkDir  = "SNOLABIB_WORK_DIR"
)

const defaultTemplate = "template.html"

func resolveCiteproc() string {
	if citeprocPath != "" {
		return citeprocPath
	}
	if v := os.Getenv(envCiteproc); v != "" {
		return v
	}
	if cfg, err := config.LoadGlobalConfig(); err == nil && cfg.CiteprocPath != "" {
		return cfg.CiteprocPath
	}
	return render.DefaultExecutable
}

func resolveTemplate() string {
	if templateFile != "" {
		return templateFile
	}
	if v := os.Getenv(envTemplate); v != "" {
		return v
	}
	if cfg, err := config.LoadGlobalConfig(); err == nil && cfg.TemplateFile != "" {
		return cfg.TemplateFile
	}
	return defaultTemplate
}

func resolveDelay() time.Duration {
	ms := delayMillis
	if ms <= 0 {
		if v := os.Getenv(envDelayMS); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				ms = n
			}
		}
	}
	if ms <= 0 {
		if cfg, err := config.LoadGlobalConfig(); err == nil {
			ms = cfg.DelayMillis
		}
	}
	if ms <= 0 {
		return 0 // client default applies
	}
	return time.Duration(ms) * time.Millisecond
}

func resolveWorkDir() string {
	if workDir != "" {
		return workDir
	}
	if v := os.Getenv(envWorkDir); v != "" {
		return v
	}
	if cfg, err := config.LoadGlobalConfig(); err == nil && cfg.WorkDir != "" {
		return cfg.WorkDir
	}
	return "."
}

// defaultYearWindow is the last five years inclusive, matching what a
// group webpage usually wants to show.
func defaultYearWindow() (first, last int) {
	last = time.Now().Year()
	return last - 5, last
}
