package integrate

import (
	"fmt"
	"os"

	"github.com/gocarina/gocsv"

	"costetl/internal/model"
)

// ReadReferenceProjects 读取既存项目 CSV（列：id,code,name）
func ReadReferenceProjects(path string) ([]model.ReferenceProject, error) {
	var out []model.ReferenceProject
	if err := readCSV(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadReferenceVendors 读取既存协力会社 CSV（列：id,name）
func ReadReferenceVendors(path string) ([]model.ReferenceVendor, error) {
	var out []model.ReferenceVendor
	if err := readCSV(path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func readCSV(path string, out interface{}) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if err := gocsv.UnmarshalFile(f, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}
