package config

import (
	"fmt"
	"time"
)

// DefaultTargetURL используется, когда URL из CLI не прошёл валидацию
const DefaultTargetURL = "https://www.udemy.com/courses/development"

type Config struct {
	Rod           RodConfig           `yaml:"rod"`
	Scroll        ScrollConfig        `yaml:"scroll"`
	Image         ImageConfig         `yaml:"image"`
	Backoff       BackoffConfig       `yaml:"backoff"`
	HTTP          HttpConfig          `yaml:"http"`
	RateLimit     RateLimitConfig     `yaml:"rate_limit"`
	Targets       []TargetConfig      `yaml:"targets"`
	SelectorsFile string              `yaml:"selectors_file"`
	Normalize     NormalizeConfig     `yaml:"normalize"`
	Output        OutputConfig        `yaml:"output"`
	Storage       StorageConfig       `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
}

type RodConfig struct {
	ChromePath         string `yaml:"chrome_path"`
	Headless           bool   `yaml:"headless"`
	PageTimeoutS       int    `yaml:"page_timeout_s"`
	BreadcrumbTimeoutS int    `yaml:"breadcrumb_timeout_s"`
	ShutdownGraceTimeS int    `yaml:"shutdown_grace_time_s"`
}

type ScrollConfig struct {
	StepDelayMS      int `yaml:"step_delay_ms"`
	ImageStepDelayMS int `yaml:"image_step_delay_ms"`
	MaxSteps         int `yaml:"max_steps"`
}

type ImageConfig struct {
	Dir                string `yaml:"dir"`
	SizeFrom           string `yaml:"size_from"`
	SizeTo             string `yaml:"size_to"`
	MaxResolveAttempts int    `yaml:"max_resolve_attempts"`
}

type BackoffConfig struct {
	MinMS     int `yaml:"min_ms"`
	MaxMS     int `yaml:"max_ms"`
	JitterPct int `yaml:"jitter_pct"`
}

type HttpConfig struct {
	UserAgent           string `yaml:"user_agent"`
	ConnectTimeoutMS    int    `yaml:"connect_timeout_ms"`
	TotalTimeoutMS      int    `yaml:"total_timeout_ms"`
	MaxRetries          int    `yaml:"max_retries"`
	RespectRobots       bool   `yaml:"respect_robots"`
	RobotsCacheTTLHours int    `yaml:"robots_cache_ttl_hours"`
}

type RateLimitConfig struct {
	MaxConcurrentPerHost int `yaml:"max_concurrent_per_host"`
	RPM                  int `yaml:"rpm"`
}

// TargetConfig — одна категория листинга и сколько курсов из неё собрать
type TargetConfig struct {
	URL   string `yaml:"url"`
	Count int    `yaml:"count"`
}

type NormalizeConfig struct {
	TrimNBSP       bool `yaml:"trim_nbsp"`
	CollapseSpaces bool `yaml:"collapse_spaces"`
}

type OutputConfig struct {
	CoursesCSV    string `yaml:"courses_csv"`
	CategoriesCSV string `yaml:"categories_csv"`
}

type StorageConfig struct {
	MSSQLDSN         string `yaml:"mssql_dsn"`
	CommandTimeoutMS int    `yaml:"command_timeout_ms"`
}

type ObservabilityConfig struct {
	LogPath  string `yaml:"log_path"`
	LogLevel string `yaml:"log_level"`
}

// Validation
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return fmt.Errorf("at least one target is required")
	}
	for i, t := range c.Targets {
		if !IsValidTargetURL(t.URL) {
			return fmt.Errorf("targets[%d].url is not a valid http(s) URL: %q", i, t.URL)
		}
		if t.Count <= 0 {
			return fmt.Errorf("targets[%d].count must be > 0", i)
		}
	}
	if c.SelectorsFile == "" {
		return fmt.Errorf("selectors_file is required")
	}
	if c.Rod.PageTimeoutS <= 0 {
		return fmt.Errorf("rod.page_timeout_s must be > 0")
	}
	if c.Rod.BreadcrumbTimeoutS <= 0 {
		return fmt.Errorf("rod.breadcrumb_timeout_s must be > 0")
	}
	if c.Scroll.StepDelayMS < 0 || c.Scroll.ImageStepDelayMS < 0 {
		return fmt.Errorf("scroll delays must be >= 0")
	}
	if c.Scroll.MaxSteps <= 0 {
		return fmt.Errorf("scroll.max_steps must be > 0")
	}
	if c.Image.Dir == "" {
		return fmt.Errorf("image.dir is required")
	}
	if c.Image.MaxResolveAttempts <= 0 {
		return fmt.Errorf("image.max_resolve_attempts must be > 0")
	}
	if (c.Image.SizeFrom == "") != (c.Image.SizeTo == "") {
		return fmt.Errorf("image.size_from and image.size_to must be set together")
	}
	if c.HTTP.UserAgent == "" {
		return fmt.Errorf("http.user_agent is required")
	}
	if c.HTTP.ConnectTimeoutMS <= 0 {
		return fmt.Errorf("http.connect_timeout_ms must be > 0")
	}
	if c.HTTP.TotalTimeoutMS <= 0 {
		return fmt.Errorf("http.total_timeout_ms must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.HTTP.RespectRobots && c.HTTP.RobotsCacheTTLHours <= 0 {
		return fmt.Errorf("http.robots_cache_ttl_hours must be > 0 when respect_robots is on")
	}
	if c.RateLimit.MaxConcurrentPerHost <= 0 {
		return fmt.Errorf("rate_limit.max_concurrent_per_host must be > 0")
	}
	if c.RateLimit.RPM <= 0 {
		return fmt.Errorf("rate_limit.rpm must be > 0")
	}
	if c.Output.CoursesCSV == "" || c.Output.CategoriesCSV == "" {
		return fmt.Errorf("output.courses_csv and output.categories_csv are required")
	}
	if c.Storage.MSSQLDSN != "" && c.Storage.CommandTimeoutMS <= 0 {
		return fmt.Errorf("storage.command_timeout_ms must be > 0 when mssql_dsn is set")
	}
	if c.Observability.LogPath == "" {
		return fmt.Errorf("observability.log_path is required")
	}
	if c.Observability.LogLevel == "" {
		return fmt.Errorf("observability.log_level is required")
	}
	if c.Backoff.MinMS <= 0 {
		return fmt.Errorf("backoff.min_ms must be > 0")
	}
	if c.Backoff.MaxMS <= 0 {
		return fmt.Errorf("backoff.max_ms must be > 0")
	}
	if c.Backoff.MinMS > c.Backoff.MaxMS {
		return fmt.Errorf("backoff.min_ms must be <= backoff.max_ms")
	}
	if c.Backoff.JitterPct < 0 || c.Backoff.JitterPct > 100 {
		return fmt.Errorf("backoff.jitter_pct must be between 0 and 100")
	}
	return nil
}

// Getters
func (c *Config) GetConnectTimeout() time.Duration {
	return time.Duration(c.HTTP.ConnectTimeoutMS) * time.Millisecond
}

func (c *Config) GetTotalTimeout() time.Duration {
	return time.Duration(c.HTTP.TotalTimeoutMS) * time.Millisecond
}

func (c *Config) GetBackoffMin() time.Duration {
	return time.Duration(c.Backoff.MinMS) * time.Millisecond
}

func (c *Config) GetBackoffMax() time.Duration {
	return time.Duration(c.Backoff.MaxMS) * time.Millisecond
}

func (c *Config) GetCommandTimeout() time.Duration {
	return time.Duration(c.Storage.CommandTimeoutMS) * time.Millisecond
}

func (c *Config) GetRobotsCacheTTL() time.Duration {
	return time.Duration(c.HTTP.RobotsCacheTTLHours) * time.Hour
}

func (c *Config) GetRodPageTimeout() time.Duration {
	return time.Duration(c.Rod.PageTimeoutS) * time.Second
}

func (c *Config) GetRodBreadcrumbTimeout() time.Duration {
	return time.Duration(c.Rod.BreadcrumbTimeoutS) * time.Second
}

func (c *Config) GetShutdownGraceTime() time.Duration {
	return time.Duration(c.Rod.ShutdownGraceTimeS) * time.Second
}

func (c *Config) GetScrollStepDelay() time.Duration {
	return time.Duration(c.Scroll.StepDelayMS) * time.Millisecond
}

func (c *Config) GetImageScrollStepDelay() time.Duration {
	return time.Duration(c.Scroll.ImageStepDelayMS) * time.Millisecond
}
