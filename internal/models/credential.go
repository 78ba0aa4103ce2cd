package models

// SecretOrigin records which generation strategy produced the secret
type SecretOrigin string

const (
	OriginUserSupplied    SecretOrigin = "userSupplied"
	OriginToolGenerated   SecretOrigin = "toolGenerated"
	OriginRandomGenerated SecretOrigin = "randomGenerated"
	OriginWeakFallback    SecretOrigin = "weakFallback"
)

/**
 * Connection credential pair, exactly one per run
 * @property {int} port - listening port, 10000..60000 inclusive
 * @property {string} secret - pre-shared key, never empty
 * @property {string} origin - strategy that produced the secret
 */
type Credential struct {
	Port   int          `json:"port"`
	Secret string       `json:"secret"`
	Origin SecretOrigin `json:"origin"`
}
