package domain

import "slices"

// InputSnapshot is one complete, immutable set of patient, laboratory and
// imaging data for a single evaluation.
//
// Numeric fields that may be missing are pointers: nil means "not tested"
// and is never read as zero. Categorical fields carry an explicit
// not-tested constant; the empty string is treated the same way.
type InputSnapshot struct {
	Patient     PatientInfo      `json:"patient" yaml:"patient"`
	Genetic     GeneticInput     `json:"genetic" yaml:"genetic"`
	Infectious  InfectiousInput  `json:"infectious" yaml:"infectious"`
	Immunologic ImmunologicInput `json:"immunologic" yaml:"immunologic"`
	Anatomic    AnatomicInput    `json:"anatomic" yaml:"anatomic"`
	Laboratory  LaboratoryInput  `json:"laboratory" yaml:"laboratory"`
	MaleFactor  MaleFactorInput  `json:"male_factor" yaml:"male_factor"`
}

// Measured returns a measurement holding v.
func Measured(v float64) *float64 {
	return &v
}

// PatientInfo holds the demographic fields.
type PatientInfo struct {
	Name          string        `json:"name" yaml:"name"`
	Age           int           `json:"age" yaml:"age"`
	FailureCount  int           `json:"failure_count" yaml:"failure_count"`
	BMI           float64       `json:"bmi" yaml:"bmi"`
	EmbryoType    EmbryoType    `json:"embryo_type,omitempty" yaml:"embryo_type,omitempty"`
	EmbryoQuality EmbryoQuality `json:"embryo_quality,omitempty" yaml:"embryo_quality,omitempty"`
}

type EmbryoType string

const (
	EmbryoBlastocyst EmbryoType = "blastocyst"
	EmbryoDay3       EmbryoType = "day3"
	EmbryoBoth       EmbryoType = "both"
)

func (e EmbryoType) IsValid() bool {
	return e == "" || slices.Contains([]EmbryoType{EmbryoBlastocyst, EmbryoDay3, EmbryoBoth}, e)
}

// Label returns the display name of the embryo type.
func (e EmbryoType) Label() string {
	switch e {
	case EmbryoBlastocyst:
		return "Blastocistos"
	case EmbryoDay3:
		return "D3"
	case EmbryoBoth:
		return "Ambos"
	default:
		return "Não informado"
	}
}

type EmbryoQuality string

const (
	QualityExcellent EmbryoQuality = "excellent"
	QualityGood      EmbryoQuality = "good"
	QualityFair      EmbryoQuality = "fair"
)

func (q EmbryoQuality) IsValid() bool {
	return q == "" || slices.Contains([]EmbryoQuality{QualityExcellent, QualityGood, QualityFair}, q)
}

// Label returns the display name of the embryo grade.
func (q EmbryoQuality) Label() string {
	switch q {
	case QualityExcellent:
		return "Excelente (AA/AB)"
	case QualityGood:
		return "Boa (BA/BB)"
	case QualityFair:
		return "Regular"
	default:
		return "Não informado"
	}
}

// QualitativeResult is a positive/negative laboratory result.
type QualitativeResult string

const (
	ResultNotTested QualitativeResult = "not_tested"
	ResultNegative  QualitativeResult = "negative"
	ResultPositive  QualitativeResult = "positive"
)

func (r QualitativeResult) IsTested() bool { return r != "" && r != ResultNotTested }

func (r QualitativeResult) IsValid() bool {
	return r == "" || slices.Contains([]QualitativeResult{ResultNotTested, ResultNegative, ResultPositive}, r)
}

// ---------------------------------------------------------------------------
// Genetic
// ---------------------------------------------------------------------------

// GeneticInput holds karyotype, PGT-A, thrombophilia and HLA results.
type GeneticInput struct {
	Karyotype   KaryotypeResult `json:"karyotype,omitempty" yaml:"karyotype,omitempty"`
	PGTA        PGTAResult      `json:"pgt_a,omitempty" yaml:"pgt_a,omitempty"`
	FactorV     Genotype        `json:"factor_v_leiden,omitempty" yaml:"factor_v_leiden,omitempty"`
	Prothrombin Genotype        `json:"prothrombin_g20210a,omitempty" yaml:"prothrombin_g20210a,omitempty"`
	MTHFR       Genotype        `json:"mthfr_c677t,omitempty" yaml:"mthfr_c677t,omitempty"`
	PAI1        PAI1Genotype    `json:"pai1,omitempty" yaml:"pai1,omitempty"`
	// HLASharedAlleles is the number of shared HLA-DQ alleles; nil when HLA
	// typing was not done.
	HLASharedAlleles *int `json:"hla_shared_alleles,omitempty" yaml:"hla_shared_alleles,omitempty"`
}

// ThrombophiliaPanelTested reports whether any hereditary thrombophilia
// mutation was tested.
func (g GeneticInput) ThrombophiliaPanelTested() bool {
	return g.FactorV.IsTested() || g.Prothrombin.IsTested()
}

type KaryotypeResult string

const (
	KaryotypeNotPerformed KaryotypeResult = "not_performed"
	KaryotypeNormal       KaryotypeResult = "normal"
	KaryotypeAbnormal     KaryotypeResult = "abnormal"
)

func (k KaryotypeResult) IsTested() bool { return k != "" && k != KaryotypeNotPerformed }

func (k KaryotypeResult) IsValid() bool {
	return k == "" || slices.Contains([]KaryotypeResult{KaryotypeNotPerformed, KaryotypeNormal, KaryotypeAbnormal}, k)
}

type PGTAResult string

const (
	PGTANotPerformed    PGTAResult = "not_performed"
	PGTAAllAneuploid    PGTAResult = "all_aneuploid"
	PGTAMostlyAneuploid PGTAResult = "mostly_aneuploid"
	PGTAMostlyEuploid   PGTAResult = "mostly_euploid"
)

func (p PGTAResult) IsTested() bool { return p != "" && p != PGTANotPerformed }

func (p PGTAResult) IsValid() bool {
	return p == "" || slices.Contains([]PGTAResult{PGTANotPerformed, PGTAAllAneuploid, PGTAMostlyAneuploid, PGTAMostlyEuploid}, p)
}

// Genotype is the zygosity result of a single-gene mutation test.
type Genotype string

const (
	GenotypeNotTested    Genotype = "not_tested"
	GenotypeNormal       Genotype = "normal"
	GenotypeHeterozygous Genotype = "heterozygous"
	GenotypeHomozygous   Genotype = "homozygous"
)

func (g Genotype) IsTested() bool { return g != "" && g != GenotypeNotTested }

func (g Genotype) IsValid() bool {
	return g == "" || slices.Contains([]Genotype{GenotypeNotTested, GenotypeNormal, GenotypeHeterozygous, GenotypeHomozygous}, g)
}

// Carrier reports whether at least one mutated allele was found.
func (g Genotype) Carrier() bool {
	return g == GenotypeHeterozygous || g == GenotypeHomozygous
}

type PAI1Genotype string

const (
	PAI1NotTested PAI1Genotype = "not_tested"
	PAI15G5G      PAI1Genotype = "5g_5g"
	PAI14G5G      PAI1Genotype = "4g_5g"
	PAI14G4G      PAI1Genotype = "4g_4g"
)

func (p PAI1Genotype) IsTested() bool { return p != "" && p != PAI1NotTested }

func (p PAI1Genotype) IsValid() bool {
	return p == "" || slices.Contains([]PAI1Genotype{PAI1NotTested, PAI15G5G, PAI14G5G, PAI14G4G}, p)
}

// ---------------------------------------------------------------------------
// Infectious
// ---------------------------------------------------------------------------

// InfectiousInput holds chronic endometritis work-up and pathogen panels.
type InfectiousInput struct {
	Hysteroscopy       HysteroscopyResult `json:"hysteroscopy,omitempty" yaml:"hysteroscopy,omitempty"`
	CD138Biopsy        CD138Result        `json:"cd138_biopsy,omitempty" yaml:"cd138_biopsy,omitempty"`
	Ureaplasma         QualitativeResult  `json:"ureaplasma,omitempty" yaml:"ureaplasma,omitempty"`
	Mycoplasma         QualitativeResult  `json:"mycoplasma,omitempty" yaml:"mycoplasma,omitempty"`
	Chlamydia          QualitativeResult  `json:"chlamydia,omitempty" yaml:"chlamydia,omitempty"`
	EndometrialCulture QualitativeResult  `json:"endometrial_culture,omitempty" yaml:"endometrial_culture,omitempty"`
	CultureOrganism    string             `json:"culture_organism,omitempty" yaml:"culture_organism,omitempty"`
	Microbiome         MicrobiomeResult   `json:"microbiome,omitempty" yaml:"microbiome,omitempty"`
}

type HysteroscopyResult string

const (
	HysteroscopyNotPerformed   HysteroscopyResult = "not_performed"
	HysteroscopyNormal         HysteroscopyResult = "normal"
	HysteroscopyMicropolyps    HysteroscopyResult = "micropolyps"
	HysteroscopyFocalHyperemia HysteroscopyResult = "focal_hyperemia"
	HysteroscopyStromalEdema   HysteroscopyResult = "stromal_edema"
)

func (h HysteroscopyResult) IsTested() bool { return h != "" && h != HysteroscopyNotPerformed }

func (h HysteroscopyResult) IsValid() bool {
	return h == "" || slices.Contains([]HysteroscopyResult{
		HysteroscopyNotPerformed, HysteroscopyNormal, HysteroscopyMicropolyps,
		HysteroscopyFocalHyperemia, HysteroscopyStromalEdema,
	}, h)
}

// SuggestsEndometritis reports whether the hysteroscopic finding is
// suggestive of chronic endometritis.
func (h HysteroscopyResult) SuggestsEndometritis() bool {
	return h == HysteroscopyMicropolyps || h == HysteroscopyFocalHyperemia || h == HysteroscopyStromalEdema
}

type CD138Result string

const (
	CD138NotPerformed CD138Result = "not_performed"
	CD138Negative     CD138Result = "negative"          // <5 cells per field
	CD138PositiveLow  CD138Result = "positive_5_10"     // 5-10 cells per field
	CD138PositiveHigh CD138Result = "positive_above_10" // >10 cells per field
)

func (c CD138Result) IsTested() bool { return c != "" && c != CD138NotPerformed }

func (c CD138Result) IsValid() bool {
	return c == "" || slices.Contains([]CD138Result{CD138NotPerformed, CD138Negative, CD138PositiveLow, CD138PositiveHigh}, c)
}

// Positive reports whether the biopsy confirms chronic endometritis.
func (c CD138Result) Positive() bool {
	return c == CD138PositiveLow || c == CD138PositiveHigh
}

type MicrobiomeResult string

const (
	MicrobiomeNotPerformed MicrobiomeResult = "not_performed"
	MicrobiomeAbove90      MicrobiomeResult = "lactobacillus_above_90"
	MicrobiomeFrom50To90   MicrobiomeResult = "lactobacillus_50_90"
	MicrobiomeBelow50      MicrobiomeResult = "lactobacillus_below_50"
)

func (m MicrobiomeResult) IsTested() bool { return m != "" && m != MicrobiomeNotPerformed }

func (m MicrobiomeResult) IsValid() bool {
	return m == "" || slices.Contains([]MicrobiomeResult{MicrobiomeNotPerformed, MicrobiomeAbove90, MicrobiomeFrom50To90, MicrobiomeBelow50}, m)
}

// ---------------------------------------------------------------------------
// Immunologic
// ---------------------------------------------------------------------------

// ImmunologicInput holds antiphospholipid titers, autoantibodies, NK cells
// and the thyroid panel.
type ImmunologicInput struct {
	AnticardiolipinIgG *float64          `json:"anticardiolipin_igg,omitempty" yaml:"anticardiolipin_igg,omitempty"` // GPL
	AnticardiolipinIgM *float64          `json:"anticardiolipin_igm,omitempty" yaml:"anticardiolipin_igm,omitempty"` // MPL
	LupusAnticoagulant QualitativeResult `json:"lupus_anticoagulant,omitempty" yaml:"lupus_anticoagulant,omitempty"`
	AntiB2GP1IgG       *float64          `json:"anti_b2gp1_igg,omitempty" yaml:"anti_b2gp1_igg,omitempty"` // U/mL
	AntiB2GP1IgM       *float64          `json:"anti_b2gp1_igm,omitempty" yaml:"anti_b2gp1_igm,omitempty"` // U/mL

	ANA       ANATiter          `json:"ana,omitempty" yaml:"ana,omitempty"`
	AntiDsDNA QualitativeResult `json:"anti_dsdna,omitempty" yaml:"anti_dsdna,omitempty"`

	PeripheralNKPercent *float64      `json:"peripheral_nk_percent,omitempty" yaml:"peripheral_nk_percent,omitempty"`
	EndometrialNK       EndometrialNK `json:"endometrial_nk,omitempty" yaml:"endometrial_nk,omitempty"`

	TSH     *float64          `json:"tsh,omitempty" yaml:"tsh,omitempty"`         // mUI/L
	FreeT4  *float64          `json:"free_t4,omitempty" yaml:"free_t4,omitempty"` // ng/dL
	AntiTPO AntiTPOResult     `json:"anti_tpo,omitempty" yaml:"anti_tpo,omitempty"`
	AntiTg  QualitativeResult `json:"anti_tg,omitempty" yaml:"anti_tg,omitempty"`
}

type ANATiter string

const (
	ANANotTested ANATiter = "not_tested"
	ANANegative  ANATiter = "negative"
	ANA1to80     ANATiter = "1:80"
	ANA1to160    ANATiter = "1:160"
	ANA1to320    ANATiter = "1:320"
	ANAAbove320  ANATiter = "above_1:320"
)

func (a ANATiter) IsTested() bool { return a != "" && a != ANANotTested }

func (a ANATiter) IsValid() bool {
	return a == "" || slices.Contains([]ANATiter{ANANotTested, ANANegative, ANA1to80, ANA1to160, ANA1to320, ANAAbove320}, a)
}

// Significant reports whether the titer is at or above 1:160.
func (a ANATiter) Significant() bool {
	return a == ANA1to160 || a == ANA1to320 || a == ANAAbove320
}

type EndometrialNK string

const (
	EndometrialNKNotTested EndometrialNK = "not_tested"
	EndometrialNKNormal    EndometrialNK = "normal"              // <5%
	EndometrialNKMild      EndometrialNK = "mildly_elevated"     // 5-10%
	EndometrialNKModerate  EndometrialNK = "moderately_elevated" // 10-15%
	EndometrialNKMarked    EndometrialNK = "markedly_elevated"   // >15%
)

func (n EndometrialNK) IsTested() bool { return n != "" && n != EndometrialNKNotTested }

func (n EndometrialNK) IsValid() bool {
	return n == "" || slices.Contains([]EndometrialNK{
		EndometrialNKNotTested, EndometrialNKNormal, EndometrialNKMild, EndometrialNKModerate, EndometrialNKMarked,
	}, n)
}

// Label returns the display name of the endometrial NK category.
func (n EndometrialNK) Label() string {
	switch n {
	case EndometrialNKNormal:
		return "Normal (<5%)"
	case EndometrialNKMild:
		return "Levemente elevado (5-10%)"
	case EndometrialNKModerate:
		return "Moderadamente elevado (10-15%)"
	case EndometrialNKMarked:
		return "Muito elevado (>15%)"
	default:
		return "Não testado"
	}
}

type AntiTPOResult string

const (
	AntiTPONotTested AntiTPOResult = "not_tested"
	AntiTPONegative  AntiTPOResult = "negative"          // <35
	AntiTPOPositive  AntiTPOResult = "positive"          // 35-100
	AntiTPOMarked    AntiTPOResult = "markedly_elevated" // >100
)

func (a AntiTPOResult) IsTested() bool { return a != "" && a != AntiTPONotTested }

func (a AntiTPOResult) IsValid() bool {
	return a == "" || slices.Contains([]AntiTPOResult{AntiTPONotTested, AntiTPONegative, AntiTPOPositive, AntiTPOMarked}, a)
}

// ---------------------------------------------------------------------------
// Anatomic
// ---------------------------------------------------------------------------

// AnatomicInput holds imaging findings, endometrial assessment and the ERA
// receptivity result.
type AnatomicInput struct {
	Findings               []AnatomicalFinding `json:"findings,omitempty" yaml:"findings,omitempty"`
	EndometrialThicknessMM *float64            `json:"endometrial_thickness_mm,omitempty" yaml:"endometrial_thickness_mm,omitempty"`
	EndometrialPattern     EndometrialPattern  `json:"endometrial_pattern,omitempty" yaml:"endometrial_pattern,omitempty"`
	ERA                    ERAResult           `json:"era,omitempty" yaml:"era,omitempty"`
}

// Has reports whether the finding was selected.
func (a AnatomicInput) Has(f AnatomicalFinding) bool {
	return slices.Contains(a.Findings, f)
}

// AnatomicalFinding is the closed set of selectable imaging findings.
type AnatomicalFinding string

const (
	AnatomicalNone                 AnatomicalFinding = "none"
	EndometrialPolyp               AnatomicalFinding = "endometrial_polyp"
	EndocervicalPolyp              AnatomicalFinding = "endocervical_polyp"
	SubmucosalFibroid              AnatomicalFinding = "submucosal_fibroid"
	IntramuralFibroidNear          AnatomicalFinding = "intramural_fibroid_near_endometrium"
	IntramuralFibroidDistant       AnatomicalFinding = "intramural_fibroid_distant"
	UterineSeptum                  AnatomicalFinding = "uterine_septum"
	BicornuateUterus               AnatomicalFinding = "bicornuate_uterus"
	AshermanSyndrome               AnatomicalFinding = "asherman_synechiae"
	AdenomyosisFocal               AnatomicalFinding = "adenomyosis_focal"
	AdenomyosisDiffuse             AnatomicalFinding = "adenomyosis_diffuse"
	HydrosalpinxUnilateral         AnatomicalFinding = "hydrosalpinx_unilateral"
	HydrosalpinxBilateral          AnatomicalFinding = "hydrosalpinx_bilateral"
	OvarianEndometrioma            AnatomicalFinding = "ovarian_endometrioma"
	DeepEndometriosis              AnatomicalFinding = "deep_endometriosis"
	IrregularEndometrialThickening AnatomicalFinding = "irregular_endometrial_thickening"
)

// AnatomicalFindings lists every finding in canonical order.
var AnatomicalFindings = []AnatomicalFinding{
	AnatomicalNone,
	EndometrialPolyp,
	EndocervicalPolyp,
	SubmucosalFibroid,
	IntramuralFibroidNear,
	IntramuralFibroidDistant,
	UterineSeptum,
	BicornuateUterus,
	AshermanSyndrome,
	AdenomyosisFocal,
	AdenomyosisDiffuse,
	HydrosalpinxUnilateral,
	HydrosalpinxBilateral,
	OvarianEndometrioma,
	DeepEndometriosis,
	IrregularEndometrialThickening,
}

func (f AnatomicalFinding) IsValid() bool {
	return slices.Contains(AnatomicalFindings, f)
}

// IsHydrosalpinx reports whether the finding is any hydrosalpinx variant.
func (f AnatomicalFinding) IsHydrosalpinx() bool {
	return f == HydrosalpinxUnilateral || f == HydrosalpinxBilateral
}

// IsAdenomyosis reports whether the finding is any adenomyosis variant.
func (f AnatomicalFinding) IsAdenomyosis() bool {
	return f == AdenomyosisFocal || f == AdenomyosisDiffuse
}

// IsEndometriosis reports whether the finding is endometrioma or deep
// endometriosis.
func (f AnatomicalFinding) IsEndometriosis() bool {
	return f == OvarianEndometrioma || f == DeepEndometriosis
}

type EndometrialPattern string

const (
	PatternNotAssessed EndometrialPattern = "not_assessed"
	PatternTrilaminar  EndometrialPattern = "trilaminar"
	PatternHomogeneous EndometrialPattern = "homogeneous"
	PatternIrregular   EndometrialPattern = "irregular"
)

func (p EndometrialPattern) IsTested() bool { return p != "" && p != PatternNotAssessed }

func (p EndometrialPattern) IsValid() bool {
	return p == "" || slices.Contains([]EndometrialPattern{PatternNotAssessed, PatternTrilaminar, PatternHomogeneous, PatternIrregular}, p)
}

// ERAResult is the endometrial receptivity classification.
type ERAResult string

const (
	ERANotPerformed  ERAResult = "not_performed"
	ERAReceptive     ERAResult = "receptive"
	ERAPreReceptive  ERAResult = "pre_receptive"
	ERAPostReceptive ERAResult = "post_receptive"
)

func (e ERAResult) IsTested() bool { return e != "" && e != ERANotPerformed }

func (e ERAResult) IsValid() bool {
	return e == "" || slices.Contains([]ERAResult{ERANotPerformed, ERAReceptive, ERAPreReceptive, ERAPostReceptive}, e)
}

// TransferShift returns the signed transfer timing adjustment in 12-24h
// units: +1 transfers later, -1 earlier, 0 keeps the current timing.
func (e ERAResult) TransferShift() int {
	switch e {
	case ERAPreReceptive:
		return 1
	case ERAPostReceptive:
		return -1
	default:
		return 0
	}
}

// ---------------------------------------------------------------------------
// Laboratory
// ---------------------------------------------------------------------------

// LaboratoryInput holds the hormonal, metabolic and inflammatory panels.
type LaboratoryInput struct {
	VitaminD           *float64 `json:"vitamin_d,omitempty" yaml:"vitamin_d,omitempty"`                     // ng/mL
	Prolactin          *float64 `json:"prolactin,omitempty" yaml:"prolactin,omitempty"`                     // ng/mL
	LutealProgesterone *float64 `json:"luteal_progesterone,omitempty" yaml:"luteal_progesterone,omitempty"` // ng/mL
	FastingGlucose     *float64 `json:"fasting_glucose,omitempty" yaml:"fasting_glucose,omitempty"`         // mg/dL
	FastingInsulin     *float64 `json:"fasting_insulin,omitempty" yaml:"fasting_insulin,omitempty"`         // µU/mL
	HbA1c              *float64 `json:"hba1c,omitempty" yaml:"hba1c,omitempty"`                             // %
	CRP                *float64 `json:"crp,omitempty" yaml:"crp,omitempty"`                                 // mg/L
	Homocysteine       *float64 `json:"homocysteine,omitempty" yaml:"homocysteine,omitempty"`               // µmol/L
	// AntioxidantOptIn records an explicit request for the antioxidant
	// protocol regardless of age.
	AntioxidantOptIn bool `json:"antioxidant_opt_in,omitempty" yaml:"antioxidant_opt_in,omitempty"`
}

// ---------------------------------------------------------------------------
// Male factor
// ---------------------------------------------------------------------------

// MaleFactorInput holds the partner's semen analysis and DNA fragmentation.
type MaleFactorInput struct {
	SemenAnalysis    SemenAnalysis    `json:"semen_analysis,omitempty" yaml:"semen_analysis,omitempty"`
	DNAFragmentation DNAFragmentation `json:"dna_fragmentation,omitempty" yaml:"dna_fragmentation,omitempty"`
}

type SemenAnalysis string

const (
	SemenNotPerformed                 SemenAnalysis = "not_performed"
	SemenNormal                       SemenAnalysis = "normal"
	SemenMildOligozoospermia          SemenAnalysis = "mild_oligozoospermia"
	SemenSevereOligozoospermia        SemenAnalysis = "moderate_severe_oligozoospermia"
	SemenAsthenozoospermia            SemenAnalysis = "asthenozoospermia"
	SemenTeratozoospermia             SemenAnalysis = "teratozoospermia"
	SemenOligoasthenoteratozoospermia SemenAnalysis = "oligoasthenoteratozoospermia"
)

func (s SemenAnalysis) IsTested() bool { return s != "" && s != SemenNotPerformed }

func (s SemenAnalysis) IsValid() bool {
	return s == "" || slices.Contains([]SemenAnalysis{
		SemenNotPerformed, SemenNormal, SemenMildOligozoospermia, SemenSevereOligozoospermia,
		SemenAsthenozoospermia, SemenTeratozoospermia, SemenOligoasthenoteratozoospermia,
	}, s)
}

// Label returns the display name of the semen analysis category.
func (s SemenAnalysis) Label() string {
	switch s {
	case SemenNormal:
		return "Normal (OMS 2021)"
	case SemenMildOligozoospermia:
		return "Oligozoospermia leve"
	case SemenSevereOligozoospermia:
		return "Oligozoospermia moderada/grave"
	case SemenAsthenozoospermia:
		return "Astenozoospermia"
	case SemenTeratozoospermia:
		return "Teratozoospermia"
	case SemenOligoasthenoteratozoospermia:
		return "Oligoastenoteratozoospermia"
	default:
		return "Não realizado"
	}
}

type DNAFragmentation string

const (
	DNAFragmentationNotPerformed DNAFragmentation = "not_performed"
	DNAFragmentationBelow15      DNAFragmentation = "below_15"
	DNAFragmentation15To25       DNAFragmentation = "15_25"
	DNAFragmentation25To30       DNAFragmentation = "25_30"
	DNAFragmentationAbove30      DNAFragmentation = "above_30"
)

func (d DNAFragmentation) IsTested() bool { return d != "" && d != DNAFragmentationNotPerformed }

func (d DNAFragmentation) IsValid() bool {
	return d == "" || slices.Contains([]DNAFragmentation{
		DNAFragmentationNotPerformed, DNAFragmentationBelow15, DNAFragmentation15To25,
		DNAFragmentation25To30, DNAFragmentationAbove30,
	}, d)
}

// Elevated reports whether fragmentation is borderline (25-30%) or high.
func (d DNAFragmentation) Elevated() bool {
	return d == DNAFragmentation25To30 || d == DNAFragmentationAbove30
}
