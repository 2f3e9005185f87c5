package service

import (
	"io"

	"github.com/sirupsen/logrus"

	"github.com/rif-protocol-server/internal/domain"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func intPtr(v int) *int { return &v }

// untestedSnapshot has demographics only: every test carries its
// not-tested sentinel.
func untestedSnapshot() domain.InputSnapshot {
	return domain.InputSnapshot{
		Patient: domain.PatientInfo{
			Name:          "Maria Silva",
			Age:           32,
			FailureCount:  3,
			BMI:           23,
			EmbryoType:    domain.EmbryoBlastocyst,
			EmbryoQuality: domain.QualityGood,
		},
	}
}

// normalSnapshot has every test performed with a result in the middle of
// its normal range.
func normalSnapshot() domain.InputSnapshot {
	s := untestedSnapshot()
	s.Genetic = domain.GeneticInput{
		Karyotype:        domain.KaryotypeNormal,
		PGTA:             domain.PGTAMostlyEuploid,
		FactorV:          domain.GenotypeNormal,
		Prothrombin:      domain.GenotypeNormal,
		MTHFR:            domain.GenotypeNormal,
		PAI1:             domain.PAI15G5G,
		HLASharedAlleles: intPtr(0),
	}
	s.Infectious = domain.InfectiousInput{
		Hysteroscopy:       domain.HysteroscopyNormal,
		CD138Biopsy:        domain.CD138Negative,
		Ureaplasma:         domain.ResultNegative,
		Mycoplasma:         domain.ResultNegative,
		Chlamydia:          domain.ResultNegative,
		EndometrialCulture: domain.ResultNegative,
		Microbiome:         domain.MicrobiomeAbove90,
	}
	s.Immunologic = domain.ImmunologicInput{
		AnticardiolipinIgG:  domain.Measured(10),
		AnticardiolipinIgM:  domain.Measured(10),
		LupusAnticoagulant:  domain.ResultNegative,
		AntiB2GP1IgG:        domain.Measured(10),
		AntiB2GP1IgM:        domain.Measured(10),
		ANA:                 domain.ANANegative,
		AntiDsDNA:           domain.ResultNegative,
		PeripheralNKPercent: domain.Measured(10),
		EndometrialNK:       domain.EndometrialNKNormal,
		TSH:                 domain.Measured(1.5),
		FreeT4:              domain.Measured(1.2),
		AntiTPO:             domain.AntiTPONegative,
		AntiTg:              domain.ResultNegative,
	}
	s.Anatomic = domain.AnatomicInput{
		Findings:               []domain.AnatomicalFinding{domain.AnatomicalNone},
		EndometrialThicknessMM: domain.Measured(10),
		EndometrialPattern:     domain.PatternTrilaminar,
		ERA:                    domain.ERAReceptive,
	}
	s.Laboratory = domain.LaboratoryInput{
		VitaminD:           domain.Measured(45),
		Prolactin:          domain.Measured(12),
		LutealProgesterone: domain.Measured(15),
		FastingGlucose:     domain.Measured(85),
		FastingInsulin:     domain.Measured(5),
		HbA1c:              domain.Measured(5.2),
		CRP:                domain.Measured(1),
		Homocysteine:       domain.Measured(8),
	}
	s.MaleFactor = domain.MaleFactorInput{
		SemenAnalysis:    domain.SemenNormal,
		DNAFragmentation: domain.DNAFragmentationBelow15,
	}
	return s
}

func codes(fs domain.Findings) []domain.FindingCode {
	out := make([]domain.FindingCode, 0, len(fs))
	for _, f := range fs {
		out = append(out, f.Code)
	}
	return out
}
