package banks

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		list    []Bank
		wantErr error
	}{
		{
			name:    "empty registry",
			list:    nil,
			wantErr: ErrEmptyRegistry,
		},
		{
			name:    "missing id",
			list:    []Bank{{Title: "Банк", FallbackURL: "https://example.com"}},
			wantErr: ErrMissingID,
		},
		{
			name:    "missing title",
			list:    []Bank{{ID: "x", FallbackURL: "https://example.com"}},
			wantErr: ErrMissingTitle,
		},
		{
			name:    "no destination",
			list:    []Bank{{ID: "x", Title: "Банк"}},
			wantErr: ErrNoDestination,
		},
		{
			name: "duplicate id",
			list: []Bank{
				{ID: "x", Title: "Банк", FallbackURL: "https://example.com"},
				{ID: "x", Title: "Банк 2", Deeplink: "x://main"},
			},
			wantErr: ErrDuplicateID,
		},
		{
			name: "deeplink only is fine",
			list: []Bank{{ID: "x", Title: "Банк", Deeplink: "x://main"}},
		},
		{
			name: "builtin list is valid",
			list: Builtin(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.list)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "banks.yaml")

	yaml := `banks:
  - id: vtb
    title: ВТБ
    logo: img/LOGO_VTB.png
    deeplink: vtb://main
    fallback_url: https://online.vtb.ru/
  - id: sber
    title: Сбербанк
    fallback_url: https://www.sberbank.com/sms/pbpn
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	list, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "vtb", list[0].ID)
	assert.Equal(t, "vtb://main", list[0].Deeplink)
	assert.Equal(t, "Сбербанк", list[1].Title)
}

func TestLoadFile_Invalid(t *testing.T) {
	dir := t.TempDir()

	badYAML := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(badYAML, []byte("banks: [not: closed"), 0644))
	_, err := LoadFile(badYAML)
	assert.Error(t, err)

	invalid := filepath.Join(dir, "invalid.yaml")
	require.NoError(t, os.WriteFile(invalid, []byte("banks:\n  - id: x\n    title: Банк\n"), 0644))
	_, err = LoadFile(invalid)
	assert.ErrorIs(t, err, ErrNoDestination)

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
