package aws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/cyphera/billing-reconciler/internal/logger"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"
)

// ErrSecretNotFound is returned when neither the ARN nor the fallback variable yields a value.
var ErrSecretNotFound = errors.New("secret not found")

// secretsAPI is the subset of the Secrets Manager client in use.
type secretsAPI interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

// SecretsManagerClient wraps the AWS Secrets Manager client.
type SecretsManagerClient struct {
	svc    secretsAPI
	getenv func(string) string
}

// LoadConfig loads the default AWS configuration chain (environment
// variables, shared config, IAM role).
func LoadConfig(ctx context.Context) (aws.Config, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return aws.Config{}, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}
	return cfg, nil
}

// NewSecretsManagerClient creates a Secrets Manager client from an AWS config.
func NewSecretsManagerClient(cfg aws.Config) *SecretsManagerClient {
	return &SecretsManagerClient{svc: secretsmanager.NewFromConfig(cfg), getenv: os.Getenv}
}

func (c *SecretsManagerClient) fetch(ctx context.Context, secretArn string) (string, error) {
	result, err := c.svc.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretArn),
	})
	if err != nil {
		return "", err
	}
	if result.SecretString == nil || *result.SecretString == "" {
		return "", fmt.Errorf("secret %s is empty", secretArn)
	}
	return *result.SecretString, nil
}

// GetSecretString reads the secret whose ARN is held in secretArnEnvVar. When
// that variable is unset or the fetch fails, the plain value of fallbackEnvVar
// is used instead.
func (c *SecretsManagerClient) GetSecretString(ctx context.Context, secretArnEnvVar, fallbackEnvVar string) (string, error) {
	if secretArn := c.getenv(secretArnEnvVar); secretArn != "" {
		value, err := c.fetch(ctx, secretArn)
		if err == nil {
			logger.Debug("Fetched secret from Secrets Manager", zap.String("arnEnvVar", secretArnEnvVar))
			return value, nil
		}
		logger.Warn("Failed to retrieve secret from Secrets Manager, falling back to env var",
			zap.String("arnEnvVar", secretArnEnvVar),
			zap.String("fallbackEnvVar", fallbackEnvVar),
			zap.Error(err))
	}

	if fallbackEnvVar != "" {
		if value := c.getenv(fallbackEnvVar); value != "" {
			logger.Debug("Using secret value from environment", zap.String("envVar", fallbackEnvVar))
			return value, nil
		}
	}

	return "", fmt.Errorf("%w: ARN env var '%s' or direct env var '%s'", ErrSecretNotFound, secretArnEnvVar, fallbackEnvVar)
}

// GetSecretJSON reads the secret whose ARN is held in secretArnEnvVar and
// unmarshals it into target. There is no plain env fallback for JSON secrets.
func (c *SecretsManagerClient) GetSecretJSON(ctx context.Context, secretArnEnvVar string, target interface{}) error {
	secretArn := c.getenv(secretArnEnvVar)
	if secretArn == "" {
		return fmt.Errorf("%w: ARN env var '%s' not set", ErrSecretNotFound, secretArnEnvVar)
	}

	value, err := c.fetch(ctx, secretArn)
	if err != nil {
		return fmt.Errorf("failed to retrieve secret %s: %w", secretArnEnvVar, err)
	}
	if err := json.Unmarshal([]byte(value), target); err != nil {
		return fmt.Errorf("failed to parse secret %s as JSON: %w", secretArnEnvVar, err)
	}
	return nil
}

// rdsSecret is the credential document RDS stores in Secrets Manager.
type rdsSecret struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// DatabaseDSN builds the Postgres DSN. Deployed stages read credentials from
// the RDS secret (RDS_SECRET_ARN) and the host and database name from DB_HOST
// and DB_NAME. Local runs read DATABASE_URL, directly or via DATABASE_URL_ARN.
func (c *SecretsManagerClient) DatabaseDSN(ctx context.Context, deployed bool) (string, error) {
	if !deployed {
		return c.GetSecretString(ctx, "DATABASE_URL_ARN", "DATABASE_URL")
	}

	host := c.getenv("DB_HOST")
	name := c.getenv("DB_NAME")
	if host == "" || name == "" {
		return "", errors.New("missing required DB environment variables for deployed environment (DB_HOST, DB_NAME)")
	}
	sslMode := c.getenv("DB_SSLMODE")
	if sslMode == "" {
		sslMode = "require"
	}

	var secret rdsSecret
	if err := c.GetSecretJSON(ctx, "RDS_SECRET_ARN", &secret); err != nil {
		return "", err
	}
	if secret.Username == "" || secret.Password == "" {
		return "", errors.New("username or password not found in RDS secret data")
	}

	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=%s",
		url.QueryEscape(secret.Username), url.QueryEscape(secret.Password),
		host, name, sslMode), nil
}
