package wishlists

import (
	"context"
	"crypto/rand"
	"math/big"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"
	pkgerrors "github.com/wishboardapp/wishboard-backend/pkg/errors"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// slugTruncateLen leaves room for the "-" separator and suffix so the
	// final slug never exceeds slugMaxLen.
	slugTruncateLen = 44
	slugSuffixLen   = 5
	slugMaxLen      = slugTruncateLen + 1 + slugSuffixLen
)

var (
	slugInvalidRuns = regexp.MustCompile(`[^a-z0-9]+`)
	slugFolder      = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

	suffixAlphabet = []rune("abcdefghijklmnopqrstuvwxyz0123456789")
)

// Slugify normalizes a display name into a URL slug: diacritics are folded to
// their base letters, everything is lowercased, and runs of non-alphanumeric
// characters collapse into single hyphens.
func Slugify(name string) string {
	folded, _, err := transform.String(slugFolder, name)
	if err != nil {
		folded = name
	}
	slug := strings.ToLower(folded)
	slug = slugInvalidRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// Allocator hands out wishlist slugs that are unique per owner among live rows.
type Allocator struct {
	repo *Repository
}

// NewAllocator builds a slug allocator over the wishlist repository.
func NewAllocator(repo *Repository) *Allocator {
	return &Allocator{repo: repo}
}

// Allocate slugifies desired (or fallback when desired is empty) and returns it
// when no live wishlist of the owner already uses it. excludeID lets updates
// keep their current slug. On a collision the base is truncated and a random
// 5-character suffix is appended; the suffixed slug is not re-checked, so two
// concurrent allocations of the same name can still collide. The window is
// accepted and surfaces as a duplicate slug rather than an error.
func (a *Allocator) Allocate(ctx context.Context, ownerID uuid.UUID, desired, fallback string, excludeID *uuid.UUID) (string, error) {
	slug := Slugify(desired)
	if slug == "" {
		slug = Slugify(fallback)
	}
	if slug == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "Slug cannot be empty.")
	}

	available, err := a.repo.SlugAvailable(ctx, ownerID, slug, excludeID)
	if err != nil {
		return "", err
	}
	if available {
		return slug, nil
	}

	if len(slug) > slugTruncateLen {
		slug = slug[:slugTruncateLen]
		slug = strings.TrimRight(slug, "-")
	}
	suffix, err := randomSuffix(slugSuffixLen)
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeInternal, err, "failed to generate slug suffix")
	}
	return slug + "-" + suffix, nil
}

func randomSuffix(n int) (string, error) {
	max := big.NewInt(int64(len(suffixAlphabet)))
	out := make([]rune, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = suffixAlphabet[idx.Int64()]
	}
	return string(out), nil
}
