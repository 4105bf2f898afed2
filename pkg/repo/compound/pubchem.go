package compound

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/jwhong1020/LabCalc/internal/config"
	"github.com/jwhong1020/LabCalc/pkg/common/code"
	"github.com/jwhong1020/LabCalc/pkg/middleware/logger"
	"github.com/jwhong1020/LabCalc/pkg/repo"
)

type property struct {
	Title            string `json:"Title"`
	MolecularFormula string `json:"MolecularFormula"`
	MolecularWeight  string `json:"MolecularWeight"`
	IUPACName        string `json:"IUPACName"`
	IsomericSMILES   string `json:"IsomericSMILES"`
	CanonicalSMILES  string `json:"CanonicalSMILES"`
	SMILES           string `json:"SMILES"`
}

type PropertyResponse struct {
	PropertyTable struct {
		Properties []property `json:"Properties"`
	} `json:"PropertyTable"`
}

type pubchemImpl struct {
	client *resty.Client
}

func NewPubChemRepo() repo.CompoundRepo {
	conf := config.Global().Lookup

	return &pubchemImpl{
		client: resty.New().
			SetTimeout(time.Duration(conf.Timeout) * time.Second).
			EnableTrace().
			SetBaseURL(conf.Addr).
			SetHeader("Content-Type", "application/json"),
	}
}

func (p *pubchemImpl) GetCompoundByName(ctx context.Context, name string) (*repo.CompoundInfo, error) {
	properties := "Title,MolecularFormula,MolecularWeight,IUPACName,IsomericSMILES,CanonicalSMILES,SMILES"
	urlPath := "/rest/pug/compound/name/{name}/property/{props}/JSON"

	propResp := &PropertyResponse{}
	res, err := p.client.R().
		SetContext(ctx).
		SetPathParams(map[string]string{
			"props": properties,
			"name":  name,
		}).
		SetResult(propResp).
		Get(urlPath)
	if err != nil {
		logger.Errorf(ctx, "Failed to request properties from PubChem: %v", err)
		return nil, code.LookupErr.WithErr(err)
	}

	if res.StatusCode() == http.StatusNotFound {
		return nil, code.RecordNotFound.WithMsgf("no compound named %q", name)
	}
	if res.StatusCode() != http.StatusOK {
		return nil, code.LookupErr.WithMsgf("PubChem property query failed: status %d", res.StatusCode())
	}

	if len(propResp.PropertyTable.Properties) == 0 {
		return nil, code.LookupErr.WithMsg("Failed to parse PubChem property response")
	}

	propData := propResp.PropertyTable.Properties[0]

	title := propData.Title
	if title == "" {
		title = propData.IUPACName
	}

	smiles := propData.IsomericSMILES
	if smiles == "" {
		smiles = propData.CanonicalSMILES
	}
	if smiles == "" {
		smiles = propData.SMILES
	}

	// PubChem serves MolecularWeight as a string
	weight, _ := strconv.ParseFloat(propData.MolecularWeight, 64)

	return &repo.CompoundInfo{
		Name:             title,
		MolecularFormula: propData.MolecularFormula,
		MolecularWeight:  weight,
		SMILES:           smiles,
	}, nil
}
