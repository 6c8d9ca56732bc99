package model

// TypenameTaxonName is the discriminator of TaxonName.
const TypenameTaxonName = "TaxonNameVO"

// TaxonName is a scientific name. Synonyms point to the referent name through
// the shared reference taxon.
type TaxonName struct {
	Referential
	IsReferent       bool
	ReferenceTaxonID *int
	TaxonGroupIDs    []int
}

// TaxonNameFromObject hydrates a taxon name.
func TaxonNameFromObject(src Object) *TaxonName {
	if len(src) == 0 {
		return nil
	}
	t := &TaxonName{
		Referential:      readReferential(src),
		ReferenceTaxonID: src.Int("referenceTaxonId"),
		TaxonGroupIDs:    src.Ints("taxonGroupIds"),
	}
	if b := src.Bool("isReferent"); b != nil {
		t.IsReferent = *b
	}
	return t
}

// Typename implements Entity.
func (t *TaxonName) Typename() string { return TypenameTaxonName }

// AsObject implements Entity.
func (t *TaxonName) AsObject(opts AsObjectOptions) Object {
	if t == nil {
		return nil
	}
	target := Object{}
	t.Referential.writeTo(target, TypenameTaxonName, opts)
	target["isReferent"] = t.IsReferent
	target.SetInt("referenceTaxonId", t.ReferenceTaxonID)
	target.SetInts("taxonGroupIds", t.TaxonGroupIDs)
	return target
}
