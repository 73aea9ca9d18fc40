package extract_test

import (
	"testing"

	"github.com/elzaeemwork/autoreply-backend/internal/extract"
)

func TestParseCustomerInfo(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  extract.CustomerInfo
	}{
		{
			name:  "labeled name phone and address",
			input: "اسمي أحمد، رقمي 0791234567، وعنواني بغداد الكرادة",
			want: extract.CustomerInfo{
				Name:    "أحمد",
				Phone:   "0791234567",
				Address: "بغداد الكرادة",
			},
		},
		{
			name:  "colon labels",
			input: "الاسم: سارة\nرقم الهاتف: 0770123456\nالعنوان: البصرة العشار",
			want: extract.CustomerInfo{
				Name:    "سارة",
				Phone:   "0770123456",
				Address: "البصرة العشار",
			},
		},
		{
			name:  "bare phone and city fallback",
			input: "علي حسن، 07901234567، كربلاء حي الحسين",
			want: extract.CustomerInfo{
				Name:    "علي حسن",
				Phone:   "07901234567",
				Address: "كربلاء حي الحسين",
			},
		},
		{
			// The address fallback degrades to the first long non-phone
			// segment when nothing address-like is present.
			name:  "international phone format",
			input: "اسمي مريم، +964 7801234567",
			want: extract.CustomerInfo{
				Name:    "مريم",
				Phone:   "+964 7801234567",
				Address: "اسمي مريم",
			},
		},
		{
			name:  "address via live-in phrasing",
			input: "اسمي حيدر وأسكن في الموصل الجديدة",
			want: extract.CustomerInfo{
				Name:    "حيدر وأسكن في الموصل الجديدة",
				Address: "الموصل الجديدة",
			},
		},
		{
			name:  "empty input",
			input: "",
			want:  extract.CustomerInfo{},
		},
		{
			name:  "phone only",
			input: "0781234567",
			want:  extract.CustomerInfo{Phone: "0781234567"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extract.ParseCustomerInfo(tt.input)
			if got != tt.want {
				t.Errorf("ParseCustomerInfo(%q) = %+v, want %+v", tt.input, got, tt.want)
			}
		})
	}
}

// Re-parsing each extracted field on its own must yield the same field back.
func TestParseCustomerInfoRoundTrip(t *testing.T) {
	first := extract.ParseCustomerInfo("اسمي أحمد، رقمي 0791234567، وعنواني بغداد الكرادة")

	if got := extract.ParseCustomerInfo("اسمي " + first.Name).Name; got != first.Name {
		t.Errorf("name round trip = %q, want %q", got, first.Name)
	}
	if got := extract.ParseCustomerInfo(first.Phone).Phone; got != first.Phone {
		t.Errorf("phone round trip = %q, want %q", got, first.Phone)
	}
	if got := extract.ParseCustomerInfo("عنواني " + first.Address).Address; got != first.Address {
		t.Errorf("address round trip = %q, want %q", got, first.Address)
	}
}

func TestNameRuleOrder(t *testing.T) {
	// The explicit "my name is" rule must win over the leading-segment rule.
	input := "زهراء، اسمي فاطمة"
	if got := extract.ParseCustomerInfo(input).Name; got != "فاطمة" {
		t.Errorf("name = %q, want %q", got, "فاطمة")
	}
}

func TestPhoneRuleOrder(t *testing.T) {
	// A labeled number wins over an earlier bare number.
	input := "0751111111 رقمي 0792222222"
	if got := extract.ParseCustomerInfo(input).Phone; got != "0792222222" {
		t.Errorf("phone = %q, want %q", got, "0792222222")
	}
}
