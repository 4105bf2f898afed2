package repo

import "context"

// CompoundInfo holds the basic identity of a chemical compound as returned
// by the public lookup service.
type CompoundInfo struct {
	Name             string  `json:"name"`
	MolecularFormula string  `json:"molecular_formula"`
	MolecularWeight  float64 `json:"molecular_weight"`
	SMILES           string  `json:"smiles"`
}

// CompoundRepo resolves reagent names against the PubChem API.
type CompoundRepo interface {
	GetCompoundByName(ctx context.Context, name string) (*CompoundInfo, error)
}
