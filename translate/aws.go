package translate

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awstranslate "github.com/aws/aws-sdk-go-v2/service/translate"
)

// TranslateTextAPI is the part of the Amazon Translate client used by
// AWSTranslator.
type TranslateTextAPI interface {
	TranslateText(ctx context.Context, params *awstranslate.TranslateTextInput, optFns ...func(*awstranslate.Options)) (*awstranslate.TranslateTextOutput, error)
}

// AWSConfig holds the settings for New.
type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// AWSTranslator is a Translator using Amazon Translate.
type AWSTranslator struct {
	client TranslateTextAPI
}

// New returns an AWSTranslator using the default AWS configuration chain.
// Static credentials are used when both keys are set.
func New(ctx context.Context, cfg AWSConfig) (*AWSTranslator, error) {
	var opts []func(*awsconfig.LoadOptions) error

	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}

	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return NewWithClient(awstranslate.NewFromConfig(awsCfg)), nil
}

// NewWithClient returns an AWSTranslator using the given client.
func NewWithClient(client TranslateTextAPI) *AWSTranslator {
	return &AWSTranslator{client: client}
}

// Translate asks Amazon Translate for a translation. A source of AutoDetect
// is passed through, which makes the service detect the language.
func (t *AWSTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	if source == "" {
		source = AutoDetect
	}

	out, err := t.client.TranslateText(ctx, &awstranslate.TranslateTextInput{
		Text:               aws.String(text),
		SourceLanguageCode: aws.String(source),
		TargetLanguageCode: aws.String(target),
	})
	if err != nil {
		return "", &TranslationError{Source: source, Target: target, Err: err}
	}

	if out == nil || out.TranslatedText == nil {
		return "", &TranslationError{
			Source: source,
			Target: target,
			Err:    errors.New("empty response"),
		}
	}

	return aws.ToString(out.TranslatedText), nil
}
