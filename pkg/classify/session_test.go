package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dtnitsch/bac-archiver/models"
	"github.com/dtnitsch/bac-archiver/pkg/rules"
)

func TestClassifier_Precedence(t *testing.T) {
	c := NewClassifier(rules.Default())

	tests := []struct {
		name     string
		origin   string
		filename string
		want     models.SessionType
	}{
		{"simulation page beats june keyword", "http://subiecte2025.edu.ro/2025/simulare/simulare_bac_XII/", "E_c_istorie_2025_var_iun.pdf", models.SessionSimulation},
		{"model page beats august keyword", "http://subiecte2025.edu.ro/2025/bacalaureat/modeledesubiecte/probescrise/", "E_c_istorie_2025_var_aug.pdf", models.SessionModel},
		{"retake special", "", "E_c_istorie_2024_var_rezerva_speciala.pdf", models.SessionSpecialRetake},
		{"retake june", "", "E_c_istorie_2024_var_rezerva_iun.pdf", models.SessionMainIRetake},
		{"retake july", "", "E_c_istorie_2024_bar_rezerva_iul.pdf", models.SessionMainIRetake},
		{"retake august", "", "E_c_istorie_2024_var_rezerva_aug.pdf", models.SessionMainIIRetake},
		{"retake without sub-session defaults to june", "", "E_c_istorie_2024_var_rezerva.pdf", models.SessionMainIRetake},
		{"retake beats plain keyword", "", "E_c_istorie_2024_var_model_rezerva_aug.pdf", models.SessionMainIIRetake},
		{"special", "", "E_c_istorie_2024_var_speciala.pdf", models.SessionSpecial},
		{"olympiad", "", "E_c_istorie_2024_var_olimpici.pdf", models.SessionSpecial},
		{"june", "", "E_c_istorie_2024_var_iun.pdf", models.SessionMainI},
		{"july", "", "E_c_istorie_2024_var_iul.pdf", models.SessionMainI},
		{"august", "", "E_c_istorie_2024_var_aug.pdf", models.SessionMainII},
		{"model in filename", "", "E_c_istorie_2025_var_model_LRO.pdf", models.SessionModel},
		{"simulation in filename", "", "E_c_istorie_2025_var_simulare_LRO.pdf", models.SessionSimulation},
		{"month code august", "", "E_c_istorie_2019_08_var_02.pdf", models.SessionMainII},
		{"month code june", "", "E_c_istorie_2019_06.pdf", models.SessionMainI},
		{"variant number is not a code", "", "E_c_istorie_2019_var_06.pdf", models.SessionUnspecified},
		{"answer key number is not a code", "", "E_c_istorie_2019_bar_08.pdf", models.SessionUnspecified},
		{"unknown code", "", "E_c_istorie_2019_11.pdf", models.SessionUnspecified},
		{"no evidence", "", "E_c_istorie_2019_var.pdf", models.SessionUnspecified},
		{"origin without taxonomy", "http://subiecte.edu.ro/2024/bacalaureat/Subiecte_si_bareme/", "E_c_istorie_2024_var.pdf", models.SessionUnspecified},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.Classify(tt.origin, tt.filename))
		})
	}
}

func TestClassifier_ClassifyFirst(t *testing.T) {
	c := NewClassifier(rules.Default())

	assert.Equal(t, models.SessionMainII, c.ClassifyFirst("", "E_c_istorie_2024_var.pdf", "E_c_istorie_2024_aug.zip"))
	assert.Equal(t, models.SessionMainI, c.ClassifyFirst("", "E_c_istorie_2024_var_iun.pdf", "E_c_istorie_2024_aug.zip"))
	assert.Equal(t, models.SessionModel, c.ClassifyFirst("http://x/modeledesubiecte/", "E_c_istorie_2024_var_iun.pdf"))
	assert.Equal(t, models.SessionUnspecified, c.ClassifyFirst(""))
}

func TestClassifier_FromOrigin(t *testing.T) {
	c := NewClassifier(rules.Default())

	s, ok := c.FromOrigin("http://subiecte2025.edu.ro/2025/simulare/simulare_bac_XII/")
	assert.True(t, ok)
	assert.Equal(t, models.SessionSimulation, s)

	_, ok = c.FromOrigin("")
	assert.False(t, ok)

	_, ok = c.FromOrigin("http://subiecte.edu.ro/2024/bacalaureat/Subiecte_si_bareme/")
	assert.False(t, ok)
}

func TestResolver(t *testing.T) {
	r := NewResolver(rules.Default())

	tests := []struct {
		subject string
		context string
		want    string
	}{
		{"mate", "E_c_matematica_M_mate-info_2025_var_model_LRO.pdf", "mate-info"},
		{"mate", "E_c_matematica_M_pedagogic_2025_var_model_LRO.pdf", "pedagogic"},
		{"mate", "E_c_matematica_M_st-nat_2025_var_model_LRO.pdf", "st-nat"},
		{"mate", "E_c_matematica_M_tehnologic_2025_var_model_LRO.pdf", "tehnologic"},
		{"mate", "E_c_matematica_2025_var_model_LRO.pdf", models.SpecializationGeneral},
		{"romana", "E_a_romana_uman_ped_2025_var_model.pdf", "uman"},
		{"chimie", "E_d_chimie_organica_2025_var_model_LRO.pdf", "organica"},
		{"info", "E_d_informatica_2025_sp_MI_C_var_model_LRO.pdf", "mate-info-C"},
		{"info", "E_d_informatica_2025_sp_MI_P_var_model_LRO.pdf", "mate-info-Pascal"},
		{"info", "E_d_informatica_2025_sp_SN_bar_model_LRO.pdf", "st-nat-bareme"},
		{"istorie", "E_c_istorie_2025_var_model_mate-info.pdf", models.SpecializationGeneral},
		{"nonexistent", "anything", models.SpecializationGeneral},
	}

	for _, tt := range tests {
		t.Run(tt.subject+"/"+tt.context, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Resolve(tt.subject, tt.context))
		})
	}
}
