package mailer

import (
	"testing"

	"sportify-backoffice/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSMTPSender(t *testing.T) {
	_, err := NewSMTPSender(utils.EmailConfig{})
	assert.ErrorIs(t, err, ErrNotConfigured)

	_, err = NewSMTPSender(utils.EmailConfig{Host: "smtp.example.com"})
	assert.ErrorIs(t, err, ErrNotConfigured)

	sender, err := NewSMTPSender(utils.EmailConfig{
		Host:     "smtp.example.com",
		Port:     587,
		User:     "mailer",
		Password: "secret",
		From:     "noreply@example.com",
		FromName: "Sportify",
	})
	require.NoError(t, err)
	assert.NotNil(t, sender)
}
