package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDownloadSignerRoundTrip(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	token, expiresAt, err := signer.Generate("activity-report-2024-06-01.csv")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.False(t, expiresAt.IsZero())

	name, err := signer.Parse(token)
	require.NoError(t, err)
	require.Equal(t, "activity-report-2024-06-01.csv", name)
}

func TestDownloadSignerRejectsExpired(t *testing.T) {
	signer := NewDownloadSigner("secret", 10*time.Millisecond)
	token, _, err := signer.Generate("meal-report-2024-06-01.pdf")
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	_, err = signer.Parse(token)
	require.Error(t, err)
}

func TestDownloadSignerRejectsTampering(t *testing.T) {
	signer := NewDownloadSigner("secret", time.Hour)
	token, _, err := signer.Generate("activity-report-2024-06-01.csv")
	require.NoError(t, err)

	_, err = signer.Parse(token + "x")
	require.Error(t, err)

	_, err = NewDownloadSigner("other-secret", time.Hour).Parse(token)
	require.Error(t, err)
}
