// Package transcripttest generates synthetic transcripts for tests and
// benchmarks using gofakeit.
package transcripttest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/FACorreiaa/transcript-strike/internal/domain/transcript"
)

// German grade steps.
var gradeSteps = []float64{1.0, 1.3, 1.7, 2.0, 2.3, 2.7, 3.0, 3.3, 3.7, 4.0}

var creditSteps = []float64{2.5, 5, 5, 5, 7.5, 10}

// Generator produces reproducible transcripts from a seed.
type Generator struct {
	faker *gofakeit.Faker
	seq   int
}

// NewGenerator creates a generator with a fixed seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// label returns a course name that is unique within the generator.
func (g *Generator) label() string {
	g.seq++
	noun := g.faker.Noun()
	if noun == "" {
		noun = "Modul"
	}
	return fmt.Sprintf("%s%s %d", strings.ToUpper(noun[:1]), noun[1:], g.seq)
}

func (g *Generator) grade() float64 {
	return gradeSteps[g.faker.Number(0, len(gradeSteps)-1)]
}

func (g *Generator) credits() float64 {
	return creditSteps[g.faker.Number(0, len(creditSteps)-1)]
}

// Courses generates records spread over the given number of categories. About
// one in eight is passed without a grade and one in twenty has zero weight.
func (g *Generator) Courses(categories, perCategory int) []transcript.Course {
	courses := make([]transcript.Course, 0, categories*perCategory)
	for c := 0; c < categories; c++ {
		category := fmt.Sprintf("Bereich %d", c+1)
		for i := 0; i < perCategory; i++ {
			course := transcript.Course{
				Category:       category,
				Label:          g.label(),
				Grade:          transcript.Numeric(g.grade()),
				Credits:        g.credits(),
				WeightModifier: 1,
			}
			switch n := g.faker.Number(1, 40); {
			case n <= 5:
				course.Grade = transcript.Passed()
			case n <= 7:
				course.WeightModifier = 0
			}
			courses = append(courses, course)
		}
	}
	return courses
}

// Rows generates a transcript row stream: for every section a group row whose
// credits equal the sum of its courses, the course rows, a nested group row
// and an unfinished course, followed by the 8-cell thesis block.
func (g *Generator) Rows(sections, perSection int) [][]string {
	rows := [][]string{
		{"Modul-ID", "Typ", "Module/Fächer", "Note", "Vm", "Ang", "CP", "Datum", "Sem"},
	}
	for s := 0; s < sections; s++ {
		var body [][]string
		total := 0.0
		for i := 0; i < perSection; i++ {
			credits := g.credits()
			total += credits
			grade := FormatNumber(g.grade())
			if g.faker.Number(1, 10) == 1 {
				grade = "B"
			}
			body = append(body, FullRow(transcript.KindCourse, g.label(), grade, FormatNumber(credits)))
			if i == 0 && perSection > 1 {
				body = append(body, FullRow(transcript.KindSection, "Wahlpflicht "+g.faker.Noun(), "", "5"))
			}
		}
		body = append(body, FullRow(transcript.KindCourse, g.label(), "", "5"))

		rows = append(rows, FullRow(transcript.KindSection, fmt.Sprintf("Studienbereich %d", s+1), "", FormatNumber(total)))
		rows = append(rows, body...)
	}

	rows = append(rows,
		ThesisRow(transcript.SectionThesis, "", ""),
		ThesisRow("Bachelorarbeit", FormatNumber(g.grade()), "12"),
		ThesisRow("Kolloquium", FormatNumber(g.grade()), "3"),
	)
	return rows
}

// FullRow builds a 9-cell row.
func FullRow(kind, name, grade, credits string) []string {
	return []string{"1000", kind, name, grade, "", "", credits, "01.02.2023", "WiSe 22/23"}
}

// ThesisRow builds an 8-cell row of the thesis block.
func ThesisRow(name, grade, credits string) []string {
	return []string{"9000", name, grade, "", "", credits, "15.09.2023", "SoSe 23"}
}

// FormatNumber renders v with a decimal comma.
func FormatNumber(v float64) string {
	return strings.ReplaceAll(strconv.FormatFloat(v, 'f', -1, 64), ".", ",")
}
