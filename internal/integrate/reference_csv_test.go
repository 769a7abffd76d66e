package integrate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"costetl/internal/model"
)

func TestReadReferenceCSV(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	projects := filepath.Join(dir, "projects.csv")
	require.NoError(t, os.WriteFile(projects, []byte("id,code,name\n7,EM20,BBB\n8,EM21,CCC\n"), 0644))
	vendors := filepath.Join(dir, "vendors.csv")
	require.NoError(t, os.WriteFile(vendors, []byte("id,name\n41,ABC建設株式会社\n"), 0644))

	gotProjects, err := ReadReferenceProjects(projects)
	require.NoError(t, err)
	require.Equal(t, []model.ReferenceProject{
		{ID: 7, Code: "EM20", Name: "BBB"},
		{ID: 8, Code: "EM21", Name: "CCC"},
	}, gotProjects)

	gotVendors, err := ReadReferenceVendors(vendors)
	require.NoError(t, err)
	require.Equal(t, []model.ReferenceVendor{{ID: 41, Name: "ABC建設株式会社"}}, gotVendors)

	_, err = ReadReferenceVendors(filepath.Join(dir, "missing.csv"))
	require.Error(t, err)
}
