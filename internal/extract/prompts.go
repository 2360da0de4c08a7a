package extract

import (
	"fmt"
	"strings"
)

// Kind is the detected document kind. It selects the extraction prompt;
// each kind carries its own field vocabulary.
type Kind int

const (
	KindUnknown Kind = iota
	KindSignatureCard
	KindCorporateResolution
	KindDepositAgreement
)

func (k Kind) String() string {
	switch k {
	case KindSignatureCard:
		return "signature_card"
	case KindCorporateResolution:
		return "corporate_resolution"
	case KindDepositAgreement:
		return "deposit_agreement"
	default:
		return "unknown"
	}
}

// ParseKind is the inverse of Kind.String. Unrecognized values parse as
// KindUnknown.
func ParseKind(s string) Kind {
	switch s {
	case "signature_card":
		return KindSignatureCard
	case "corporate_resolution":
		return KindCorporateResolution
	case "deposit_agreement":
		return KindDepositAgreement
	default:
		return KindUnknown
	}
}

// DetectKind classifies a document from its linearized text.
func DetectKind(text string) Kind {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "signature card"):
		return KindSignatureCard
	case strings.Contains(lower, "corporate resolution") || strings.Contains(lower, "certified resolution"):
		return KindCorporateResolution
	case strings.Contains(lower, "deposit account agreement") || strings.Contains(lower, "deposit agreement"):
		return KindDepositAgreement
	default:
		return KindUnknown
	}
}

const promptRules = `Rules:
- Return ONLY a JSON object, no other text.
- Field values must be strings, numbers, booleans, lists of strings, or lists of flat records.
- Use "holder_names" for the list of account holder names.
- Use "supporting_documents" for a list of records like {"type": "...", "number": "..."}.
- Omit fields that are not present on the page. Do not guess.`

const signatureCardPrompt = `Extract the signature-card fields from the following bank document page as a JSON object. Look for: account holder names, account type, ownership type, date opened, signer records (name, title, SSN last four), and any listed supporting identification documents.

` + promptRules

const corporateResolutionPrompt = `Extract the corporate-resolution fields from the following bank document page as a JSON object. Look for: entity name, resolution date, authorized signers with their titles, and any certification details.

` + promptRules

const depositAgreementPrompt = `Extract the deposit-agreement fields from the following bank document page as a JSON object. Look for: account holder names, account type, terms effective date, and fee or rate details stated on the page.

` + promptRules

const generalPrompt = `Extract every clearly labeled field from the following bank document page as a JSON object of field name to value.

` + promptRules

// PromptFor returns the extraction prompt template for a document kind.
func PromptFor(kind Kind) string {
	switch kind {
	case KindSignatureCard:
		return signatureCardPrompt
	case KindCorporateResolution:
		return corporateResolutionPrompt
	case KindDepositAgreement:
		return depositAgreementPrompt
	default:
		return generalPrompt
	}
}

// BuildPagePrompt assembles the full prompt for one page, including the
// owning account number when known.
func BuildPagePrompt(kind Kind, accountNumber, pageText string) string {
	var sb strings.Builder
	sb.WriteString(PromptFor(kind))
	sb.WriteString("\n\n---\n")
	if accountNumber != "" {
		sb.WriteString(fmt.Sprintf("Account number: %s\n", accountNumber))
	}
	sb.WriteString("---\n")
	sb.WriteString(pageText)
	return sb.String()
}
