package placement

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/dtnitsch/bac-archiver/models"
	"github.com/dtnitsch/bac-archiver/pkg/classify"
	"github.com/dtnitsch/bac-archiver/pkg/rules"
)

func TestPlan(t *testing.T) {
	rs := rules.Default()
	parser := classify.New(rs)
	planner := New(rs)

	tests := []struct {
		filename string
		want     models.PlacementDecision
	}{
		{
			filename: "E_c_matematica_M_mate-info_2025_var_model_LRO.pdf",
			want: models.PlacementDecision{
				Destinations: []string{"mate/pages/mate-info/2025/Model"},
				Filename:     "E_c_matematica_M_mate-info_2025_var_model.pdf",
			},
		},
		{
			filename: "E_d_informatica_2025_sp_MI_bar_model_LRO.pdf",
			want: models.PlacementDecision{
				Destinations: []string{
					"info/pages/mate-info-C/2025/Model",
					"info/pages/mate-info-Pascal/2025/Model",
				},
				Filename: "E_d_informatica_2025_sp_MI_bar_model.pdf",
			},
		},
		{
			filename: "E_d_informatica_2024_sp_SN_bar_iun_LRO.pdf",
			want: models.PlacementDecision{
				Destinations: []string{
					"info/pages/st-nat-C/2024/Sesiunea-I",
					"info/pages/st-nat-Pascal/2024/Sesiunea-I",
				},
				Filename: "E_d_informatica_2024_sp_SN_bar_iun.pdf",
			},
		},
		{
			filename: "E_d_istorie_2024_var_rezerva_aug.pdf",
			want: models.PlacementDecision{
				Destinations: []string{"istorie/pages/bac/2024/Sesiunea-II-rezerva"},
				Filename:     "E_d_istorie_2024_var_rezerva_aug.pdf",
			},
		},
		{
			filename: "E_c_istorie_2023.pdf",
			want: models.PlacementDecision{
				Destinations: []string{"istorie/pages/bac/2023/-"},
				Filename:     "E_c_istorie_2023.pdf",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			d, err := parser.Parse(tt.filename)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			got, err := planner.Plan(d)
			if err != nil {
				t.Fatalf("Plan() error = %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Plan()\n got  %+v\n want %+v", got, tt.want)
			}

			again, _ := planner.Plan(d)
			if !reflect.DeepEqual(got, again) {
				t.Errorf("Plan() not deterministic: %+v vs %+v", got, again)
			}
		})
	}
}

func TestPlan_FanOutDiffersOnlyInTrack(t *testing.T) {
	rs := rules.Default()
	planner := New(rs)

	for sub, tracks := range rs.FanOut {
		d := models.ExamDescriptor{
			Subject:        "info",
			Specialization: sub,
			Year:           "2025",
			Session:        models.SessionMainII,
			Role:           models.RoleAnswerKey,
			Filename:       "E_d_informatica_2025_bar_aug_LRO.pdf",
		}
		got, err := planner.Plan(d)
		if err != nil {
			t.Fatalf("Plan() error = %v", err)
		}
		if len(got.Destinations) != 2 {
			t.Fatalf("%s: got %d destinations, want 2", sub, len(got.Destinations))
		}
		a := strings.Split(got.Destinations[0], "/")
		b := strings.Split(got.Destinations[1], "/")
		for i := range a {
			if i == 2 {
				if a[i] != tracks[0] || b[i] != tracks[1] {
					t.Errorf("%s: track segments = %q/%q, want %q/%q", sub, a[i], b[i], tracks[0], tracks[1])
				}
				continue
			}
			if a[i] != b[i] {
				t.Errorf("%s: segment %d differs: %q vs %q", sub, i, a[i], b[i])
			}
		}
		if !got.IsFanOut() || len(got.Keys()) != 2 {
			t.Errorf("%s: IsFanOut/Keys mismatch for %+v", sub, got)
		}
	}
}

func TestPlan_RejectsUnknownSubject(t *testing.T) {
	planner := New(rules.Default())

	_, err := planner.Plan(models.ExamDescriptor{Subject: models.SubjectUnknown, Year: "2025", Filename: "x.pdf"})
	var pf *models.ParseFailure
	if !errors.As(err, &pf) {
		t.Fatalf("Plan() error = %v, want *models.ParseFailure", err)
	}

	_, err = planner.Plan(models.ExamDescriptor{Subject: "mate", Filename: "x.pdf"})
	if !errors.As(err, &pf) {
		t.Fatalf("Plan() without year error = %v, want *models.ParseFailure", err)
	}
}

func TestCleanFilename(t *testing.T) {
	planner := New(rules.Default())

	tests := []struct {
		name string
		want string
	}{
		{"E_c_istorie_2025_var_model_LRO.pdf", "E_c_istorie_2025_var_model.pdf"},
		{"E_c_istorie_2025_var_model_LMA.pdf", "E_c_istorie_2025_var_model.pdf"},
		{"E_c_istorie_2025_var_model_lro.pdf", "E_c_istorie_2025_var_model.pdf"},
		{"E_c_istorie_2025_var_model.pdf", "E_c_istorie_2025_var_model.pdf"},
		// Only a marker right before the extension counts.
		{"E_c_istorie_LRO_2025_var_model.pdf", "E_c_istorie_LRO_2025_var_model.pdf"},
		// Only one marker is stripped.
		{"E_c_istorie_2025_LMA_LRO.pdf", "E_c_istorie_2025_LMA.pdf"},
		{"_LRO.pdf", "_LRO.pdf"},
		{"notes_LRO", "notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := planner.CleanFilename(tt.name); got != tt.want {
				t.Errorf("CleanFilename(%q) = %q, want %q", tt.name, got, tt.want)
			}
		})
	}
}

func TestDescribe(t *testing.T) {
	d := models.PlacementDecision{
		Destinations: []string{"info/pages/mate-info-C/2025/Model", "info/pages/mate-info-Pascal/2025/Model"},
		Filename:     "E_d_informatica_2025_sp_MI_bar_model.pdf",
	}
	want := "E_d_informatica_2025_sp_MI_bar_model.pdf -> info/pages/mate-info-C/2025/Model, info/pages/mate-info-Pascal/2025/Model"
	if got := Describe(d); got != want {
		t.Errorf("Describe() = %q, want %q", got, want)
	}
}
