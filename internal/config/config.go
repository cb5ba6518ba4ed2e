package config

import "time"

type ServerModeType string

const (
	ServerModeProd ServerModeType = "prod"
	ServerModeDev  ServerModeType = "dev"
)

//go:generate go run github.com/ecordell/optgen -output zz_generated.configuration.go . Configuration Server Agent Camera
type Configuration struct {
	Server Server `debugmap:"visible"`
	Agent  Agent  `debugmap:"visible"`
	Camera Camera `debugmap:"visible"`

	// Log
	LogFormat string `debugmap:"visible" default:"console"`
	LogLevel  string `debugmap:"visible" default:"info"`
}

type Server struct {
	ServerMode        string        `debugmap:"visible" default:"dev"`
	ListenAddress     string        `debugmap:"visible" default:"0.0.0.0"`
	HTTPPort          int           `debugmap:"visible" default:"8080"`
	ReadHeaderTimeout time.Duration `debugmap:"visible" default:"10s"`
}

type Agent struct {
	DataFolder    string        `debugmap:"visible"`
	NumWorkers    int           `debugmap:"visible" default:"2"`
	WatchInterval time.Duration `debugmap:"visible" default:"2s"`
}

type Camera struct {
	Address          string        `debugmap:"visible" default:"192.168.12.1"`
	RequestTimeout   time.Duration `debugmap:"visible" default:"5s"`
	PollInterval     time.Duration `debugmap:"visible" default:"1s"`
	CalibrationPolls int           `debugmap:"visible" default:"4"`
	SettleDelay      time.Duration `debugmap:"visible" default:"1s"`

	PretriggerTimeout  time.Duration `debugmap:"visible" default:"10s"`
	PostTriggerTimeout time.Duration `debugmap:"visible" default:"10s"`
	CancelTimeout      time.Duration `debugmap:"visible" default:"10s"`
	SaveTimeout        time.Duration `debugmap:"visible" default:"30s"`
	TruncateTimeout    time.Duration `debugmap:"visible" default:"10s"`
	DiscardTimeout     time.Duration `debugmap:"visible" default:"5s"`
}
