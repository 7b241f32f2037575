package pipeline

import "testing"

func TestDetectRFQ(t *testing.T) {
	cases := []struct {
		name    string
		subject string
		text    string
		html    string
		attach  []string
		want    bool
	}{
		{
			"quote subject with models",
			"Quote request - rooftop units",
			"Please price AB060X and AB125C for our store.",
			"", nil,
			true,
		},
		{
			"model list with replacement subject",
			"Replacement units",
			"AB060X\nAB125C\nZHG04N4B",
			"", nil,
			true,
		},
		{
			"spreadsheet attachment with keyword",
			"RFQ attached",
			"pricing needed, see attached",
			"", []string{"equipment.xlsx"},
			true,
		},
		{
			"plain chatter",
			"lunch tomorrow?",
			"are you free around noon?",
			"", nil,
			false,
		},
		{
			"single keyword only",
			"pricing question",
			"quick question about your hourly rates",
			"", nil,
			false,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := DetectRFQ(tc.subject, tc.text, tc.html, tc.attach)
			if got.IsRFQ != tc.want {
				t.Fatalf("DetectRFQ = %+v, want IsRFQ=%v", got, tc.want)
			}
		})
	}
}
