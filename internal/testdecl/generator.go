package testdecl

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/veriflab/matchengine/pkg/logger"
)

// Noise case constants. The distribution mirrors what real laboratory
// spreadsheets look like: mostly clean rows, a tail of typos, stripped
// accents, alternate date formats, and the occasional person who is not
// on the official list at all.
const (
	noiseDivisor       = 10
	caseExact          = 0
	caseExactAgain     = 1
	caseExactThird     = 2
	caseExactFourth    = 3
	caseStrippedAccent = 4
	caseNameTypo       = 5
	caseCardTypo       = 6
	caseISODate        = 7
	caseSwappedName    = 8
	caseUnknownPerson  = 9
)

// Expected outcome labels attached to generated declarations.
const (
	ExpectValidated = "auto-validated"
	ExpectReview    = "needs-review"
	ExpectRejected  = "auto-rejected"
	ExpectAny       = "any"
)

var (
	firstNames   = []string{"Jean", "Marie", "Pierre", "Hélène", "François", "Amélie", "Luc", "Chloé", "René", "Aurélie", "Benoît", "Agnès"}
	lastNames    = []string{"Dupont", "Lefèvre", "Martin", "Bernard", "Moreau", "Durand", "Lambert", "Fontaine", "Rousseau", "Chevalier", "Gauthier", "Noël"}
	specialties  = []string{"cardiology", "oncology", "neurology", "dermatology", "pediatrics"}
	laboratories = []string{"lab-pasteur", "lab-pharma", "lab-biotech", "lab-sanofi"}
)

func randInt(n int64) int64 {
	v, _ := rand.Int(rand.Reader, big.NewInt(n))
	return v.Int64()
}

// generateRoster creates a synthetic official participant roster.
func generateRoster(ctx context.Context, config *Config, stats *Stats) []Participant {
	logger.Get().Info(ctx, "generating official roster", logger.Int("size", config.RosterSize))

	roster := make([]Participant, config.RosterSize)
	for i := range roster {
		year := 1950 + randInt(45)
		month := 1 + randInt(12)
		day := 1 + randInt(28)
		roster[i] = Participant{
			ID:           uuid.New().String(),
			FirstName:    firstNames[randInt(int64(len(firstNames)))],
			LastName:     lastNames[randInt(int64(len(lastNames)))] + fmt.Sprintf("-%03d", i),
			DateOfBirth:  fmt.Sprintf("%02d/%02d/%04d", day, month, year),
			IdentityCard: fmt.Sprintf("%c%c%06d", 'A'+randInt(26), 'A'+randInt(26), randInt(1000000)),
			Specialty:    specialties[randInt(int64(len(specialties)))],
		}
	}

	stats.RosterGenerated = len(roster)
	return roster
}

// generateDeclarations derives noisy declarations from the roster.
func generateDeclarations(ctx context.Context, config *Config, roster []Participant, stats *Stats) []Declaration {
	logger.Get().Info(ctx, "generating declarations", logger.Int("count", config.NumDeclarations))

	declarations := make([]Declaration, config.NumDeclarations)
	for i := range declarations {
		official := roster[randInt(int64(len(roster)))]
		declared, expected := applyNoise(official)

		declarations[i] = Declaration{
			DeclarationID: fmt.Sprintf("decl_%d_%s", i, uuid.New().String()),
			EventID:       config.EventID,
			LaboratoryID:  laboratories[randInt(int64(len(laboratories)))],
			Participant:   declared,
			TS:            time.Now().UTC().Format(time.RFC3339),
			Expected:      expected,
		}
	}

	stats.DeclarationsGenerated = len(declarations)
	return declarations
}

// applyNoise returns a declared copy of the official record with one
// noise class applied, plus the decision the engine should reach.
func applyNoise(official Participant) (Participant, string) {
	declared := official
	declared.ID = ""

	switch randInt(noiseDivisor) {
	case caseExact, caseExactAgain, caseExactThird, caseExactFourth:
		return declared, ExpectValidated
	case caseStrippedAccent:
		declared.FirstName = stripAccents(declared.FirstName)
		declared.LastName = stripAccents(declared.LastName)
		// Accent-insensitive matching plus an exact card keeps this in
		// the auto-validation band.
		return declared, ExpectValidated
	case caseNameTypo:
		declared.LastName = dropOneRune(declared.LastName)
		return declared, ExpectAny
	case caseCardTypo:
		declared.IdentityCard = mutateDigit(declared.IdentityCard)
		return declared, ExpectAny
	case caseISODate:
		declared.DateOfBirth = toISODate(declared.DateOfBirth)
		return declared, ExpectValidated
	case caseSwappedName:
		declared.FirstName, declared.LastName = declared.LastName, declared.FirstName
		// Token-order-insensitive name matching still finds the person.
		return declared, ExpectValidated
	default:
		declared.FirstName = "Inconnu"
		declared.LastName = fmt.Sprintf("Fantome-%d", randInt(1_000_000))
		declared.DateOfBirth = "01/01/1900"
		declared.IdentityCard = fmt.Sprintf("XX%06d", randInt(1000000))
		return declared, ExpectRejected
	}
}

var accentReplacer = strings.NewReplacer(
	"é", "e", "è", "e", "ê", "e", "ë", "e",
	"à", "a", "â", "a", "î", "i", "ï", "i",
	"ô", "o", "û", "u", "ç", "c",
	"É", "E", "È", "E", "À", "A", "Ç", "C",
)

func stripAccents(s string) string {
	return accentReplacer.Replace(s)
}

func dropOneRune(s string) string {
	runes := []rune(s)
	if len(runes) < 3 {
		return s
	}
	i := 1 + randInt(int64(len(runes)-2))
	return string(runes[:i]) + string(runes[i+1:])
}

func mutateDigit(card string) string {
	runes := []rune(card)
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] >= '0' && runes[i] <= '9' {
			runes[i] = '0' + rune((int(runes[i]-'0')+1)%10)
			return string(runes)
		}
	}
	return card
}

// toISODate converts DD/MM/YYYY to YYYY-MM-DD.
func toISODate(dob string) string {
	parts := strings.Split(dob, "/")
	if len(parts) != 3 {
		return dob
	}
	return parts[2] + "-" + parts[1] + "-" + parts[0]
}
