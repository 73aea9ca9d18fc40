package extract

import (
	"regexp"
	"strconv"
	"strings"
)

// OrderSignal classifies what a generated reply asked the backend to do.
type OrderSignal string

const (
	SignalConfirmed OrderSignal = "CONFIRMED"
	SignalPending   OrderSignal = "PENDING"
)

// Directive is the structured order intent embedded in a generated reply.
// The generator appends it by prompt convention as a delimited block:
//
//	===ORDER_INFO===            (or ===ORDER_PENDING===)
//	PRODUCT_NAME: ...
//	QUANTITY: ...
//	CUSTOMER_INFO: ...
//	NOTES: ...
//	STATUS: CONFIRMED           (or WAITING_FOR_INFO)
//	===END_ORDER===
type Directive struct {
	Signal       OrderSignal
	ProductName  string
	Quantity     int
	CustomerInfo string
	Notes        string
}

var (
	confirmedBlock = regexp.MustCompile(`===ORDER_INFO===\s+((?s:.*?))===END_ORDER===`)
	pendingBlock   = regexp.MustCompile(`===ORDER_PENDING===\s+((?s:.*?))===END_ORDER===`)

	productNameField  = regexp.MustCompile(`PRODUCT_NAME:\s*(.+)`)
	quantityField     = regexp.MustCompile(`QUANTITY:\s*(\d+)`)
	customerInfoField = regexp.MustCompile(`CUSTOMER_INFO:\s*(.+)`)
	notesField        = regexp.MustCompile(`NOTES:\s*(.+)`)
	statusField       = regexp.MustCompile(`STATUS:\s*(.+)`)
)

func fieldValue(re *regexp.Regexp, block string) string {
	if m := re.FindStringSubmatch(block); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// ParseDirective searches reply for an order directive. The confirmed block
// is tried first, then the pending one. It returns the reply with the block
// stripped and surrounding whitespace trimmed, plus the parsed directive
// (nil when no valid block is present).
//
// Malformed blocks (wrong STATUS literal, empty PRODUCT_NAME) yield no
// directive but are still stripped, so raw delimiters never reach the
// customer. Only a block whose closing delimiter is missing entirely is left
// untouched.
func ParseDirective(reply string) (string, *Directive) {
	if m := confirmedBlock.FindStringSubmatch(reply); m != nil {
		stripped := strings.TrimSpace(confirmedBlock.ReplaceAllString(reply, ""))

		name := fieldValue(productNameField, m[1])
		status := fieldValue(statusField, m[1])
		if name == "" || status != "CONFIRMED" {
			return stripped, nil
		}

		return stripped, &Directive{
			Signal:       SignalConfirmed,
			ProductName:  name,
			Quantity:     parseQuantity(m[1]),
			CustomerInfo: fieldValue(customerInfoField, m[1]),
			Notes:        fieldValue(notesField, m[1]),
		}
	}

	if m := pendingBlock.FindStringSubmatch(reply); m != nil {
		stripped := strings.TrimSpace(pendingBlock.ReplaceAllString(reply, ""))

		name := fieldValue(productNameField, m[1])
		status := fieldValue(statusField, m[1])
		if name == "" || status != "WAITING_FOR_INFO" {
			return stripped, nil
		}

		return stripped, &Directive{
			Signal:      SignalPending,
			ProductName: name,
			Quantity:    parseQuantity(m[1]),
		}
	}

	return reply, nil
}

// parseQuantity defaults to 1 when QUANTITY is absent or non-numeric.
func parseQuantity(block string) int {
	q := fieldValue(quantityField, block)
	if q == "" {
		return 1
	}
	n, err := strconv.Atoi(q)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
