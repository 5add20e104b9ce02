package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"go.uber.org/zap"

	"github.com/stateline/stateline-api/logger"
)

// SecretsManagerClient wraps the AWS Secrets Manager client.
type SecretsManagerClient struct {
	svc *secretsmanager.Client
	cfg aws.Config
}

// NewSecretsManagerClient creates a Secrets Manager client using the default
// AWS configuration chain (environment variables, shared config, IAM role).
func NewSecretsManagerClient(ctx context.Context) (*SecretsManagerClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("unable to load AWS SDK config: %w", err)
	}

	return &SecretsManagerClient{
		svc: secretsmanager.NewFromConfig(cfg),
		cfg: cfg,
	}, nil
}

// GetSecretString fetches a secret string using an ARN named by an
// environment variable, falling back to reading the secret directly from
// another environment variable when the ARN is unset or the fetch fails.
// Secrets stored as single-key JSON objects have the value extracted.
func (c *SecretsManagerClient) GetSecretString(ctx context.Context, secretArnEnvVar string, fallbackEnvVar string) (string, error) {
	secretArn := os.Getenv(secretArnEnvVar)

	if secretArn != "" {
		input := &secretsmanager.GetSecretValueInput{
			SecretId: aws.String(secretArn),
		}

		result, err := c.svc.GetSecretValue(ctx, input)
		if err == nil && result.SecretString != nil && *result.SecretString != "" {
			fetched := *result.SecretString

			var secretJSON map[string]string
			if jsonErr := json.Unmarshal([]byte(fetched), &secretJSON); jsonErr == nil && len(secretJSON) == 1 {
				for key, value := range secretJSON {
					logger.Log.Info("Fetched secret from Secrets Manager (single-key JSON)",
						zap.String("secretArn", secretArn),
						zap.String("jsonKey", key),
					)
					return value, nil
				}
			}

			logger.Log.Info("Fetched secret from Secrets Manager", zap.String("secretArn", secretArn))
			return fetched, nil
		}

		logger.Log.Warn("Failed to retrieve secret from Secrets Manager, falling back to env var",
			zap.String("secretArnEnvVar", secretArnEnvVar),
			zap.String("fallbackEnvVar", fallbackEnvVar),
			zap.Error(err),
		)
	}

	if secretValue := os.Getenv(fallbackEnvVar); secretValue != "" {
		return secretValue, nil
	}

	return "", fmt.Errorf("secret not found using ARN env var '%s' or direct env var '%s'", secretArnEnvVar, fallbackEnvVar)
}

// GetSecretJSON fetches a secret expected to hold a JSON document and
// unmarshals it into target. There is no non-JSON fallback.
func (c *SecretsManagerClient) GetSecretJSON(ctx context.Context, secretArnEnvVar string, target interface{}) error {
	secretArn := os.Getenv(secretArnEnvVar)
	if secretArn == "" {
		return fmt.Errorf("secret ARN env var '%s' is not set", secretArnEnvVar)
	}

	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretArn),
	}

	result, err := c.svc.GetSecretValue(ctx, input)
	if err != nil {
		return fmt.Errorf("failed to retrieve secret '%s': %w", secretArn, err)
	}
	if result.SecretString == nil {
		return fmt.Errorf("secret '%s' has no string value", secretArn)
	}

	if err := json.Unmarshal([]byte(*result.SecretString), target); err != nil {
		return fmt.Errorf("failed to parse JSON secret '%s': %w", secretArn, err)
	}
	return nil
}
