package seed

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"craftmart/internal/domain"
	"craftmart/internal/repository"
	"craftmart/internal/service"
)

func services() (*service.AuthService, *service.ProductService) {
	r := repository.NewMemory()
	return service.NewAuthService(r.Users, "seed-secret", time.Hour),
		service.NewProductService(r.Products, r.Categories, r.Users)
}

func TestApply_DefaultSeed(t *testing.T) {
	ctx := context.Background()
	f, err := Load("")
	require.NoError(t, err)

	auth, products := services()
	res, err := Apply(ctx, f, auth, products, nil)
	require.NoError(t, err)
	assert.Equal(t, Result{Categories: 3, Users: 3, Products: 3}, res)

	page, err := products.Latest(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, page.Content, 3)
	assert.Equal(t, "Lacquered spinning top", page.Content[0].Name)
	assert.Equal(t, domain.UnitSet, page.Content[0].SellUnit)
	assert.Equal(t, "Woodwork", page.Content[0].Category.Name)
	assert.Equal(t, "620.5", page.Content[1].Price.String())

	tok, err := auth.Login(ctx, "9810000001", "meera123")
	require.NoError(t, err)
	claims, err := auth.Authenticate(tok)
	require.NoError(t, err)
	meera, err := auth.Profile(ctx, claims.UserID)
	require.NoError(t, err)
	assert.True(t, meera.AcceptsCustomOrders())
	assert.Equal(t, "Jaipur", meera.City)

	// users are reused on a second run
	res, err = Apply(ctx, f, auth, products, nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Users)
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse([]byte("users:\n  - name: x\n    nickname: y\n"))
	assert.Error(t, err, "unknown key")

	f, err := Parse([]byte("products:\n  - seller: \"1\"\n    name: ghost\n    price: \"1\"\n"))
	require.NoError(t, err)
	auth, products := services()
	_, err = Apply(context.Background(), f, auth, products, nil)
	assert.ErrorContains(t, err, "unknown seller")
}

func TestLoad_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte("categories: [Jewellery]\n"), 0o600))
	f, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jewellery"}, f.Categories)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
