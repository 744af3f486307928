package content

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinPackages(t *testing.T) {
	t.Parallel()

	bridal, ok := FindPackage(BuiltinPackages(), "bridal-package")
	require.True(t, ok)
	assert.Equal(t, "GBP", bridal.Currency)
	assert.InDelta(t, 120.0, bridal.Deposit, 1e-9)
	assert.InDelta(t, 350.99, bridal.Price, 1e-9)

	_, ok = FindPackage(BuiltinPackages(), "nope")
	assert.False(t, ok)
}

func TestPackagesFromDocument(t *testing.T) {
	t.Parallel()

	t.Run("coerces and assigns ids", func(t *testing.T) {
		t.Parallel()
		doc := Document(`{"packages":[
			{"id":"custom","name":"Custom","currency":"ngn","price":"65000","deposit":15000},
			{"name":"Bridal  Glow Package","price":200.5,"deposit":"50"}
		]}`)

		pkgs, ok := PackagesFromDocument(doc)
		require.True(t, ok)
		require.Len(t, pkgs, 2)

		assert.Equal(t, "custom", pkgs[0].ID)
		assert.Equal(t, "NGN", pkgs[0].Currency)
		assert.InDelta(t, 65000.0, pkgs[0].Price, 1e-9)

		assert.Equal(t, "bridal-glow-package-1", pkgs[1].ID)
		assert.Equal(t, DefaultCurrency, pkgs[1].Currency)
		assert.InDelta(t, 50.0, pkgs[1].Deposit, 1e-9)
	})

	t.Run("skips display-only prices", func(t *testing.T) {
		t.Parallel()
		pkgs, ok := PackagesFromDocument(Default(Packages))
		require.True(t, ok)
		assert.Empty(t, pkgs)
	})

	t.Run("no packages array", func(t *testing.T) {
		t.Parallel()
		_, ok := PackagesFromDocument(Document(`{"hero":{}}`))
		assert.False(t, ok)
		_, ok = PackagesFromDocument(Document(`garbage`))
		assert.False(t, ok)
	})
}

func TestLoadCatalogFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "packages.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
packages:
  - id: mini-glam
    name: Mini Glam
    currency: GBP
    price: 80
    deposit: 20
  - name: Lash Lift
    price: 45.5
    deposit: 10
`), 0o600))

	pkgs, err := LoadCatalogFile(path)
	require.NoError(t, err)
	require.Len(t, pkgs, 2)
	assert.Equal(t, "mini-glam", pkgs[0].ID)
	assert.Equal(t, "lash-lift-1", pkgs[1].ID)
	assert.Equal(t, DefaultCurrency, pkgs[1].Currency)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("packages: []\n"), 0o600))
	_, err = LoadCatalogFile(empty)
	assert.Error(t, err)

	_, err = LoadCatalogFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
