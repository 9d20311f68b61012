package model

import (
	"fmt"
	"sort"
)

// Catalog holds the datasets served by one process. It is filled before
// serving starts and only read afterwards, so concurrent reads are safe.
type Catalog struct {
	datasets map[string]*Dataset
}

// NewCatalog creates a catalog holding datasets
func NewCatalog(datasets ...*Dataset) (*Catalog, error) {
	c := &Catalog{datasets: make(map[string]*Dataset, len(datasets))}
	for _, d := range datasets {
		if err := c.Add(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// LoadCatalog loads every dataset stored in uris
func LoadCatalog(uris []string, opt LoadOption) (*Catalog, error) {
	c, _ := NewCatalog()
	for _, uri := range uris {
		datasets, err := LoadDatasets(uri, opt)
		if err != nil {
			return nil, err
		}
		for _, d := range datasets {
			if err := c.Add(d); err != nil {
				return nil, err
			}
		}
	}
	return c, nil
}

// Add registers a dataset under its name
func (c *Catalog) Add(d *Dataset) error {
	if _, ok := c.datasets[d.Name]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateDataset, d.Name)
	}
	c.datasets[d.Name] = d
	return nil
}

// Get returns the dataset called name
func (c *Catalog) Get(name string) (*Dataset, error) {
	d, ok := c.datasets[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDatasetNotFound, name)
	}
	return d, nil
}

// Len returns the number of datasets
func (c *Catalog) Len() int {
	return len(c.datasets)
}

// List returns the summaries of all datasets ordered by name
func (c *Catalog) List() []DatasetInfo {
	infos := make([]DatasetInfo, 0, len(c.datasets))
	for _, d := range c.datasets {
		infos = append(infos, d.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}
