package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	_ "github.com/mohammed-shakir/crs-transform/internal/geodesy/builtin"
)

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCRSs_JSON(t *testing.T) {
	out, err := execute(t, "", "crss", "--format", "json")
	require.NoError(t, err)
	var rows []crsRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	var ids []string
	for _, r := range rows {
		ids = append(ids, r.ID)
	}
	require.Contains(t, ids, "EPSG:28992")
	require.Contains(t, ids, "EPSG:7415")
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "", "crss", "--format", "xml")
	require.ErrorContains(t, err, "invalid format")
}

func TestPoint(t *testing.T) {
	out, err := execute(t, "", "point", "155000,463000", "-s", "EPSG:28992", "-t", "EPSG:4326", "--format", "json")
	require.NoError(t, err)
	var pt struct {
		Coordinates []float64 `json:"coordinates"`
		CRS         string    `json:"crs"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &pt))
	require.Equal(t, "EPSG:4326", pt.CRS)
	require.InDelta(t, 5.387, pt.Coordinates[0], 1e-2)

	out, err = execute(t, "", "point", "155000,463000", "-s", "EPSG:28992", "-t", "EPSG:4326", "--wkt")
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(out, "POINT(5."), out)
}

func TestPoint_Errors(t *testing.T) {
	_, err := execute(t, "", "point", "1;2", "-s", "EPSG:28992", "-t", "EPSG:4326")
	require.Error(t, err)

	_, err = execute(t, "", "point", "155000,463000,1", "-s", "EPSG:7415", "-t", "EPSG:28992")
	require.ErrorContains(t, err, "not possible")
}

func TestTransform_StdinAndFile(t *testing.T) {
	geom := `{"type":"Point","coordinates":[155000,463000]}`
	out, err := execute(t, geom, "transform", "-", "-s", "EPSG:28992", "-t", "EPSG:4326")
	require.NoError(t, err)
	require.Contains(t, out, `"coordinates":[5.`)

	dir := t.TempDir()
	in := filepath.Join(dir, "in.json")
	dst := filepath.Join(dir, "out.json")
	require.NoError(t, os.WriteFile(in, []byte(geom), 0o600))
	_, err = execute(t, "", "transform", in, "-s", "EPSG:28992", "-t", "EPSG:4326", "-o", dst)
	require.NoError(t, err)
	b, err := os.ReadFile(dst)
	require.NoError(t, err)
	require.Contains(t, string(b), `"type":"Point"`)
}

func TestTransform_RequiresTarget(t *testing.T) {
	_, err := execute(t, "{}", "transform", "-")
	require.ErrorContains(t, err, "target-crs")
}
