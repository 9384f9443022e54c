package config

// AppConfig holds the application configuration
type AppConfig struct {
	DBURL        string
	RedisAddress string
	BearerToken  string

	// OpenAI chat completions, used by the inbox assistant.
	OpenAIAPIKey string
	OpenAIModel  string

	// Twilio SMS, used by the reminder sweep.
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
}

// GetBearerToken returns the BearerToken from the config
func (c *AppConfig) GetBearerToken() string {
	return c.BearerToken
}
