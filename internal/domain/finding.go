package domain

// FindingCode identifies the rule that produced a Finding. A rule with graded
// severity keeps one code across all of its grades.
type FindingCode string

const (
	// Genetic
	CodePGTARecommended    FindingCode = "PGTA_RECOMMENDED"
	CodeHighAneuploidyRate FindingCode = "HIGH_ANEUPLOIDY_RATE"
	CodeAbnormalKaryotype  FindingCode = "ABNORMAL_KARYOTYPE"
	CodeThrombophilia      FindingCode = "THROMBOPHILIA"
	CodeMTHFRHomozygous    FindingCode = "MTHFR_HOMOZYGOUS"
	CodePAI1Homozygous4G   FindingCode = "PAI1_4G_4G"
	CodeHLAShared          FindingCode = "HLA_DQ_SHARING"

	// Infectious
	CodeChronicEndometritis    FindingCode = "CHRONIC_ENDOMETRITIS"
	CodeSuggestiveHysteroscopy FindingCode = "SUGGESTIVE_HYSTEROSCOPY"
	CodeGenitalInfection       FindingCode = "GENITAL_INFECTION"
	CodePositiveCulture        FindingCode = "POSITIVE_ENDOMETRIAL_CULTURE"
	CodeEndometrialDysbiosis   FindingCode = "ENDOMETRIAL_DYSBIOSIS"

	// Immunologic
	CodeAntiphospholipid     FindingCode = "ANTIPHOSPHOLIPID_CRITERIA"
	CodeSystemicAutoimmunity FindingCode = "SYSTEMIC_AUTOIMMUNITY"
	CodeElevatedNK           FindingCode = "ELEVATED_NK_CELLS"
	CodeThyroidDysfunction   FindingCode = "THYROID_DYSFUNCTION"
	CodeAntiThyroglobulin    FindingCode = "ANTI_THYROGLOBULIN"

	// Anatomic
	CodeSurgicalFinding      FindingCode = "SURGICAL_FINDING"
	CodeHydrosalpinx         FindingCode = "HYDROSALPINX"
	CodeAdenomyosis          FindingCode = "ADENOMYOSIS"
	CodeEndometriosis        FindingCode = "ENDOMETRIOSIS"
	CodeEndometrialThickness FindingCode = "ENDOMETRIAL_THICKNESS"
	CodeIrregularPattern     FindingCode = "IRREGULAR_ENDOMETRIAL_PATTERN"
	CodeERADisplacedWindow   FindingCode = "ERA_DISPLACED_WINDOW"
	CodeERAReceptive         FindingCode = "ERA_RECEPTIVE"

	// Laboratory
	CodeBMIOutOfRange        FindingCode = "BMI_OUT_OF_RANGE"
	CodeVitaminD             FindingCode = "VITAMIN_D"
	CodeHyperprolactinemia   FindingCode = "HYPERPROLACTINEMIA"
	CodeLowProgesterone      FindingCode = "LOW_LUTEAL_PROGESTERONE"
	CodeInsulinResistance    FindingCode = "INSULIN_RESISTANCE"
	CodeFastingGlycemia      FindingCode = "FASTING_GLYCEMIA"
	CodeHbA1c                FindingCode = "HBA1C"
	CodeCRP                  FindingCode = "C_REACTIVE_PROTEIN"
	CodeHyperhomocysteinemia FindingCode = "HYPERHOMOCYSTEINEMIA"
	CodeAntioxidantAge       FindingCode = "ANTIOXIDANT_PROTOCOL_AGE"
	CodeAntioxidantRequested FindingCode = "ANTIOXIDANT_PROTOCOL_REQUESTED"

	// Male factor
	CodeSpermDNAFragmentation FindingCode = "SPERM_DNA_FRAGMENTATION"
	CodeAbnormalSemenAnalysis FindingCode = "ABNORMAL_SEMEN_ANALYSIS"
)

func (c FindingCode) String() string {
	return string(c)
}

// Finding is one unit of triggered clinical evidence. Findings are values;
// evaluators build them once and nothing mutates them afterwards.
type Finding struct {
	Domain   ClinicalDomain `json:"domain"`
	Code     FindingCode    `json:"code"`
	Severity Severity       `json:"severity"`
	// Rationale states what was observed.
	Rationale string `json:"rationale"`
	// Advice is the recommendation text. Empty when the finding needs no
	// action.
	Advice string `json:"advice,omitempty"`
	// Alert is the mandatory-action text, set on critical findings only.
	Alert string `json:"alert,omitempty"`
	// TimingShift is the signed transfer adjustment in 12-24h units.
	TimingShift int `json:"timing_shift,omitempty"`
}

// IsCritical reports whether the finding is a mandatory alert.
func (f Finding) IsCritical() bool {
	return f.Severity.RequiresAction()
}

// Findings is an ordered sequence of findings with lookup helpers used by
// the protocol assembler.
type Findings []Finding

// Has reports whether any finding carries the code.
func (fs Findings) Has(code FindingCode) bool {
	_, ok := fs.First(code)
	return ok
}

// HasAny reports whether any finding carries one of the codes.
func (fs Findings) HasAny(codes ...FindingCode) bool {
	for _, c := range codes {
		if fs.Has(c) {
			return true
		}
	}
	return false
}

// HasCritical reports whether a critical finding with the code exists.
func (fs Findings) HasCritical(code FindingCode) bool {
	for _, f := range fs {
		if f.Code == code && f.IsCritical() {
			return true
		}
	}
	return false
}

// First returns the first finding with the code.
func (fs Findings) First(code FindingCode) (Finding, bool) {
	for _, f := range fs {
		if f.Code == code {
			return f, true
		}
	}
	return Finding{}, false
}

// InDomain returns the findings of one domain, order preserved.
func (fs Findings) InDomain(d ClinicalDomain) Findings {
	var out Findings
	for _, f := range fs {
		if f.Domain == d {
			out = append(out, f)
		}
	}
	return out
}

// AnyCritical reports whether at least one finding is critical.
func (fs Findings) AnyCritical() bool {
	for _, f := range fs {
		if f.IsCritical() {
			return true
		}
	}
	return false
}
