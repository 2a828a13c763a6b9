package calc

import (
	"testing"
)

func FuzzEvaluate(f *testing.F) {
	f.Add("")
	f.Add("1,2")
	f.Add("1\n2,3")
	f.Add("//;\n1;2;1001")
	f.Add("//|\n1|2,-3")
	f.Add("//sep\n2sep5")
	f.Add("//\n1")
	f.Add("//;")
	f.Add("//é\n1é2,3")

	f.Fuzz(func(t *testing.T, input string) {
		// Should not panic.
		report, err := Explain(input)

		if report.Expression != nil {
			body := report.Expression.Body
			prev := -1
			for _, tok := range report.Expression.Tokens {
				if tok.Offset < 0 || tok.Offset > len(body) {
					t.Errorf("token offset %d out of range for body length %d", tok.Offset, len(body))
				}
				if tok.Offset < prev {
					t.Errorf("token offsets not increasing: %d after %d", tok.Offset, prev)
				}
				prev = tok.Offset
			}
		}

		sum, err2 := Evaluate(input)
		if (err == nil) != (err2 == nil) {
			t.Fatalf("Explain and Evaluate disagree on %q: %v vs %v", input, err, err2)
		}
		if err == nil && sum != report.Sum {
			t.Errorf("Evaluate(%q) = %d, Explain sum = %d", input, sum, report.Sum)
		}
		if err != nil && sum != 0 {
			t.Errorf("Evaluate(%q) returned partial sum %d", input, sum)
		}
	})
}
