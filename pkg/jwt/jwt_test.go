package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/farmacia-logistica/pkg/jwt"
)

func TestGenerateParse(t *testing.T) {
	id := pkgjwt.Identity{UserID: "u1", LocationID: "SUC-01", Role: "bodeguero"}
	tok, err := pkgjwt.Generate("secreto", id, "farmacia", 5)
	require.NoError(t, err)

	got, err := pkgjwt.Parse("secreto", tok)
	require.NoError(t, err)
	assert.Equal(t, id, got)

	_, err = pkgjwt.Parse("otro", tok)
	assert.Error(t, err)

	expired, err := pkgjwt.Generate("secreto", id, "farmacia", -1)
	require.NoError(t, err)
	_, err = pkgjwt.Parse("secreto", expired)
	assert.Error(t, err)

	_, err = pkgjwt.Generate("", id, "farmacia", 5)
	assert.Error(t, err)
}

func TestParse_SinUserID(t *testing.T) {
	tok, err := pkgjwt.Generate("secreto", pkgjwt.Identity{Role: "admin"}, "farmacia", 5)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("secreto", tok)
	assert.Error(t, err, "un token sin user_id no identifica al actor")
}
