package profile

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestValidateNormalizesMode(t *testing.T) {
	tests := []struct {
		name string
		mode string
		want string
	}{
		{name: "prod is kept", mode: "prod", want: "prod"},
		{name: "dev is kept", mode: "dev", want: "dev"},
		{name: "empty falls back to demo", mode: "", want: "demo"},
		{name: "unknown falls back to demo", mode: "staging", want: "demo"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Profile{Mode: tt.mode, Data: t.TempDir()}
			require.NoError(t, p.Validate())
			require.Equal(t, tt.want, p.Mode)
		})
	}
}

func TestValidateSQLiteDSN(t *testing.T) {
	dir := t.TempDir()
	p := &Profile{Mode: "dev", Data: dir + "/", Driver: "sqlite"}
	require.NoError(t, p.Validate())
	require.Equal(t, filepath.Join(dir, "folio_dev.db"), p.DSN)

	custom := &Profile{Mode: "dev", Data: dir, Driver: "sqlite", DSN: "/tmp/custom.db"}
	require.NoError(t, custom.Validate())
	require.Equal(t, "/tmp/custom.db", custom.DSN)
}

func TestValidateDefaultsDriver(t *testing.T) {
	p := &Profile{Mode: "dev", Data: t.TempDir()}
	require.NoError(t, p.Validate())
	require.Equal(t, "sqlite", p.Driver)
}

func TestValidateRejectsUnknownDriver(t *testing.T) {
	p := &Profile{Mode: "dev", Data: t.TempDir(), Driver: "mysql"}
	require.Error(t, p.Validate())
}

func TestValidatePostgresRequiresDSN(t *testing.T) {
	p := &Profile{Mode: "dev", Data: t.TempDir(), Driver: "postgres"}
	require.Error(t, p.Validate())
}

func TestValidateMissingDataDir(t *testing.T) {
	p := &Profile{Mode: "dev", Data: filepath.Join(t.TempDir(), "missing")}
	require.Error(t, p.Validate())
}

func TestValidateTuningDefaults(t *testing.T) {
	p := &Profile{Mode: "dev", Data: t.TempDir()}
	require.NoError(t, p.Validate())
	require.Equal(t, time.Minute, p.CacheTTL)
	require.Equal(t, float64(10), p.RateLimit)
	require.Equal(t, 20, p.RateBurst)

	tuned := &Profile{Mode: "dev", Data: t.TempDir(), CacheTTL: 5 * time.Second, RateLimit: 2, RateBurst: 4}
	require.NoError(t, tuned.Validate())
	require.Equal(t, 5*time.Second, tuned.CacheTTL)
	require.Equal(t, float64(2), tuned.RateLimit)
	require.Equal(t, 4, tuned.RateBurst)
}

func TestIsDev(t *testing.T) {
	require.False(t, (&Profile{Mode: "prod"}).IsDev())
	require.True(t, (&Profile{Mode: "dev"}).IsDev())
	require.True(t, (&Profile{Mode: "demo"}).IsDev())
}
