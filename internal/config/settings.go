package config

import "time"

// Settings is the resolved runtime configuration of the service.
type Settings struct {
	Port     string
	LogLevel string
	LogJSON  bool
	APIKey   string

	PublicBaseURL string
	ForwardNumber string

	ReputationDBPath   string
	ReputationSeedFile string

	KnowledgeBackend string
	MongoURI         string
	MongoDatabase    string
	Embedder         string
	OpenAIAPIKey     string
	OpenAIBaseURL    string

	StateBackend  string
	BadgerPath    string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ClassifierBackend   string
	ClassifierModelFile string
	QueryAIHost         string
	KeywordOverrideFile string

	Deterministic     bool
	NoiseMagnitude    float64
	FalseNegativeRate float64
	FalsePositiveRate float64

	ShortCircuitConfidence   float64
	RejectCutoff             float64
	MaxTurns                 int
	MinInformativeWords      int
	MinRecognitionConfidence float64
	ReportToReputation       bool

	ExternalCallTimeout time.Duration
	SessionTTL          time.Duration
	PurposeTTL          time.Duration
	PurposeGrace        time.Duration

	HandoffEnabled      bool
	VoiceAgentURL       string
	VoiceAgentAPIKey    string
	VoiceAgentAssistant string
	VoiceAgentCallURL   string
}

// Load reads Settings from the environment. Call LoadEnv first to pick up a .env file.
func Load() Settings {
	return Settings{
		Port:     GetEnvDefault("PORT", "8080"),
		LogLevel: GetEnvDefault("LOG_LEVEL", "info"),
		LogJSON:  GetBool("LOG_JSON", true),
		APIKey:   GetEnv("API_KEY"),

		PublicBaseURL: GetEnvDefault("PUBLIC_BASE_URL", "http://localhost:8080"),
		ForwardNumber: GetEnvDefault("FORWARD_NUMBER", ""),

		ReputationDBPath:   GetEnvDefault("REPUTATION_DB_PATH", "data/spam_numbers.db"),
		ReputationSeedFile: GetEnvDefault("REPUTATION_SEED_FILE", ""),

		KnowledgeBackend: GetEnvDefault("KNOWLEDGE_BACKEND", "memory"),
		MongoURI:         GetEnvDefault("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:    GetEnvDefault("MONGODB_DATABASE", "CallSentinel"),
		Embedder:         GetEnvDefault("EMBEDDER", "term-frequency"),
		OpenAIAPIKey:     GetEnvDefault("OPENAI_API_KEY", ""),
		OpenAIBaseURL:    GetEnvDefault("OPENAI_BASE_URL", ""),

		StateBackend:  GetEnvDefault("STATE_BACKEND", "badger"),
		BadgerPath:    GetEnvDefault("BADGER_PATH", "data/state"),
		RedisAddr:     GetEnvDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: GetEnvDefault("REDIS_PASSWORD", ""),
		RedisDB:       GetInt("REDIS_DB", 0),

		ClassifierBackend:   GetEnvDefault("CLASSIFIER_BACKEND", "keyword"),
		ClassifierModelFile: GetEnvDefault("CLASSIFIER_MODEL_FILE", ""),
		QueryAIHost:         GetEnvDefault("QUERY_AI_API_HOST", ""),
		KeywordOverrideFile: GetEnvDefault("KEYWORD_OVERRIDE_FILE", ""),

		Deterministic:     GetBool("MODULATOR_DETERMINISTIC", false),
		NoiseMagnitude:    GetFloat("MODULATOR_NOISE", 0.10),
		FalseNegativeRate: GetFloat("MODULATOR_FALSE_NEGATIVE_RATE", 0.02),
		FalsePositiveRate: GetFloat("MODULATOR_FALSE_POSITIVE_RATE", 0.01),

		ShortCircuitConfidence:   GetFloat("SHORT_CIRCUIT_CONFIDENCE", 0.95),
		RejectCutoff:             GetFloat("REJECT_CUTOFF", 0.75),
		MaxTurns:                 GetInt("MAX_TURNS", 5),
		MinInformativeWords:      GetInt("MIN_INFORMATIVE_WORDS", 3),
		MinRecognitionConfidence: GetFloat("MIN_RECOGNITION_CONFIDENCE", 0.5),
		ReportToReputation:       GetBool("REPORT_TO_REPUTATION", true),

		ExternalCallTimeout: GetDuration("EXTERNAL_CALL_TIMEOUT", 5*time.Second),
		SessionTTL:          GetDuration("SESSION_TTL", 2*time.Hour),
		PurposeTTL:          GetDuration("PURPOSE_TTL", 24*time.Hour),
		PurposeGrace:        GetDuration("PURPOSE_GRACE", 30*time.Minute),

		HandoffEnabled:      GetBool("HANDOFF_ENABLED", false),
		VoiceAgentURL:       GetEnvDefault("VOICE_AGENT_API_URL", "https://api.vapi.ai"),
		VoiceAgentAPIKey:    GetEnvDefault("VOICE_AGENT_API_KEY", ""),
		VoiceAgentAssistant: GetEnvDefault("VOICE_AGENT_ASSISTANT_ID", ""),
		VoiceAgentCallURL:   GetEnvDefault("VOICE_AGENT_CALL_URL", ""),
	}
}
