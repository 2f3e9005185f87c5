package service

import (
	"fmt"
	"math"

	"github.com/rif-protocol-server/internal/domain"
)

// SnapshotValidatorService checks the input contract of a snapshot: numeric
// fields inside their declared ranges and categorical fields inside their
// enumerations. The evaluator itself never validates; collaborators call this
// before handing a snapshot over.
type SnapshotValidatorService struct{}

var _ domain.SnapshotValidator = (*SnapshotValidatorService)(nil)

// NewSnapshotValidator creates a new snapshot validator
func NewSnapshotValidator() *SnapshotValidatorService {
	return &SnapshotValidatorService{}
}

type numericRange struct {
	field    string
	value    *float64
	min, max float64
}

type enumCheck struct {
	field string
	value string
	valid bool
}

// Validate returns domain.ValidationErrors listing every violation, or nil.
func (v *SnapshotValidatorService) Validate(s domain.InputSnapshot) error {
	var errs domain.ValidationErrors

	p := s.Patient
	if p.Age < 18 || p.Age > 50 {
		errs = append(errs, domain.NewValidationError("patient.age", "must be between 18 and 50", p.Age))
	}
	if p.FailureCount < 3 || p.FailureCount > 20 {
		errs = append(errs, domain.NewValidationError("patient.failure_count", "must be between 3 and 20", p.FailureCount))
	}
	if math.IsNaN(p.BMI) || p.BMI < 15 || p.BMI > 50 {
		errs = append(errs, domain.NewValidationError("patient.bmi", "must be between 15 and 50", p.BMI))
	}
	if hla := s.Genetic.HLASharedAlleles; hla != nil && (*hla < 0 || *hla > 4) {
		errs = append(errs, domain.NewValidationError("genetic.hla_shared_alleles", "must be between 0 and 4", *hla))
	}

	im, an, lab := s.Immunologic, s.Anatomic, s.Laboratory
	ranges := []numericRange{
		{"immunologic.anticardiolipin_igg", im.AnticardiolipinIgG, 0, 200},
		{"immunologic.anticardiolipin_igm", im.AnticardiolipinIgM, 0, 200},
		{"immunologic.anti_b2gp1_igg", im.AntiB2GP1IgG, 0, 200},
		{"immunologic.anti_b2gp1_igm", im.AntiB2GP1IgM, 0, 200},
		{"immunologic.peripheral_nk_percent", im.PeripheralNKPercent, 0, 50},
		{"immunologic.tsh", im.TSH, 0, 10},
		{"immunologic.free_t4", im.FreeT4, 0, 3},
		{"anatomic.endometrial_thickness_mm", an.EndometrialThicknessMM, 0, 20},
		{"laboratory.vitamin_d", lab.VitaminD, 0, 100},
		{"laboratory.prolactin", lab.Prolactin, 0, 100},
		{"laboratory.luteal_progesterone", lab.LutealProgesterone, 0, 50},
		{"laboratory.fasting_glucose", lab.FastingGlucose, 0, 200},
		{"laboratory.fasting_insulin", lab.FastingInsulin, 0, 50},
		{"laboratory.hba1c", lab.HbA1c, 0, 15},
		{"laboratory.crp", lab.CRP, 0, 50},
		{"laboratory.homocysteine", lab.Homocysteine, 0, 50},
	}
	for _, r := range ranges {
		if r.value == nil {
			continue
		}
		if x := *r.value; math.IsNaN(x) || x < r.min || x > r.max {
			errs = append(errs, domain.NewValidationError(r.field,
				fmt.Sprintf("must be between %s and %s", formatValue(r.min), formatValue(r.max)), x))
		}
	}

	g, inf, mf := s.Genetic, s.Infectious, s.MaleFactor
	enums := []enumCheck{
		{"patient.embryo_type", string(p.EmbryoType), p.EmbryoType.IsValid()},
		{"patient.embryo_quality", string(p.EmbryoQuality), p.EmbryoQuality.IsValid()},
		{"genetic.karyotype", string(g.Karyotype), g.Karyotype.IsValid()},
		{"genetic.pgt_a", string(g.PGTA), g.PGTA.IsValid()},
		{"genetic.factor_v_leiden", string(g.FactorV), g.FactorV.IsValid()},
		{"genetic.prothrombin_g20210a", string(g.Prothrombin), g.Prothrombin.IsValid()},
		{"genetic.mthfr_c677t", string(g.MTHFR), g.MTHFR.IsValid()},
		{"genetic.pai1", string(g.PAI1), g.PAI1.IsValid()},
		{"infectious.hysteroscopy", string(inf.Hysteroscopy), inf.Hysteroscopy.IsValid()},
		{"infectious.cd138_biopsy", string(inf.CD138Biopsy), inf.CD138Biopsy.IsValid()},
		{"infectious.ureaplasma", string(inf.Ureaplasma), inf.Ureaplasma.IsValid()},
		{"infectious.mycoplasma", string(inf.Mycoplasma), inf.Mycoplasma.IsValid()},
		{"infectious.chlamydia", string(inf.Chlamydia), inf.Chlamydia.IsValid()},
		{"infectious.endometrial_culture", string(inf.EndometrialCulture), inf.EndometrialCulture.IsValid()},
		{"infectious.microbiome", string(inf.Microbiome), inf.Microbiome.IsValid()},
		{"immunologic.lupus_anticoagulant", string(im.LupusAnticoagulant), im.LupusAnticoagulant.IsValid()},
		{"immunologic.ana", string(im.ANA), im.ANA.IsValid()},
		{"immunologic.anti_dsdna", string(im.AntiDsDNA), im.AntiDsDNA.IsValid()},
		{"immunologic.endometrial_nk", string(im.EndometrialNK), im.EndometrialNK.IsValid()},
		{"immunologic.anti_tpo", string(im.AntiTPO), im.AntiTPO.IsValid()},
		{"immunologic.anti_tg", string(im.AntiTg), im.AntiTg.IsValid()},
		{"anatomic.endometrial_pattern", string(an.EndometrialPattern), an.EndometrialPattern.IsValid()},
		{"anatomic.era", string(an.ERA), an.ERA.IsValid()},
		{"male_factor.semen_analysis", string(mf.SemenAnalysis), mf.SemenAnalysis.IsValid()},
		{"male_factor.dna_fragmentation", string(mf.DNAFragmentation), mf.DNAFragmentation.IsValid()},
	}
	for _, e := range enums {
		if !e.valid {
			errs = append(errs, domain.NewValidationError(e.field, "unknown value", e.value))
		}
	}

	for i, f := range an.Findings {
		if !f.IsValid() {
			errs = append(errs, domain.NewValidationError(fmt.Sprintf("anatomic.findings[%d]", i), "unknown anatomical finding", string(f)))
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
