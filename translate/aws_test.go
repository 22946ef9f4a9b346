package translate_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awstranslate "github.com/aws/aws-sdk-go-v2/service/translate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zostay/emledit/translate"
)

// mockTranslateClient implements TranslateTextAPI for testing.
type mockTranslateClient struct {
	translateFn func(ctx context.Context, params *awstranslate.TranslateTextInput) (*awstranslate.TranslateTextOutput, error)
	callCount   int
	lastInput   *awstranslate.TranslateTextInput
}

func (m *mockTranslateClient) TranslateText(ctx context.Context, params *awstranslate.TranslateTextInput, _ ...func(*awstranslate.Options)) (*awstranslate.TranslateTextOutput, error) {
	m.callCount++
	m.lastInput = params
	if m.translateFn != nil {
		return m.translateFn(ctx, params)
	}
	return &awstranslate.TranslateTextOutput{TranslatedText: aws.String("Hello")}, nil
}

func TestAWSTranslator(t *testing.T) {
	t.Parallel()

	mock := &mockTranslateClient{}
	tr := translate.NewWithClient(mock)

	text, err := tr.Translate(context.Background(), "Hola", "es", "en")
	require.NoError(t, err)
	assert.Equal(t, "Hello", text)

	assert.Equal(t, 1, mock.callCount)
	assert.Equal(t, "Hola", aws.ToString(mock.lastInput.Text))
	assert.Equal(t, "es", aws.ToString(mock.lastInput.SourceLanguageCode))
	assert.Equal(t, "en", aws.ToString(mock.lastInput.TargetLanguageCode))
}

func TestAWSTranslator_Auto(t *testing.T) {
	t.Parallel()

	mock := &mockTranslateClient{}
	tr := translate.NewWithClient(mock)

	_, err := tr.Translate(context.Background(), "Hola", "", "en")
	require.NoError(t, err)
	assert.Equal(t, translate.AutoDetect, aws.ToString(mock.lastInput.SourceLanguageCode))

	_, err = tr.Translate(context.Background(), "Hola", translate.AutoDetect, "en")
	require.NoError(t, err)
	assert.Equal(t, translate.AutoDetect, aws.ToString(mock.lastInput.SourceLanguageCode))
}

func TestAWSTranslator_Error(t *testing.T) {
	t.Parallel()

	throttled := errors.New("throttled")
	tr := translate.NewWithClient(&mockTranslateClient{
		translateFn: func(context.Context, *awstranslate.TranslateTextInput) (*awstranslate.TranslateTextOutput, error) {
			return nil, throttled
		},
	})

	_, err := tr.Translate(context.Background(), "Hola", "es", "en")

	var terr *translate.TranslationError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, "es", terr.Source)
	assert.Equal(t, "en", terr.Target)
	assert.ErrorIs(t, err, throttled)
}

func TestAWSTranslator_EmptyResponse(t *testing.T) {
	t.Parallel()

	tr := translate.NewWithClient(&mockTranslateClient{
		translateFn: func(context.Context, *awstranslate.TranslateTextInput) (*awstranslate.TranslateTextOutput, error) {
			return &awstranslate.TranslateTextOutput{}, nil
		},
	})

	_, err := tr.Translate(context.Background(), "Hola", "es", "en")
	var terr *translate.TranslationError
	assert.ErrorAs(t, err, &terr)
}

func TestAWSTranslator_InService(t *testing.T) {
	t.Parallel()

	mock := &mockTranslateClient{}
	svc := &translate.Service{
		Detector:   &fakeDetector{lang: "es"},
		Translator: translate.NewWithClient(mock),
	}

	p := svc.Session().Preview(context.Background(), parseBody(t))
	assert.True(t, p.Translated)
	assert.Equal(t, "Hello", p.Text)
	assert.Equal(t, "Hola\nmundo", aws.ToString(mock.lastInput.Text))
}
