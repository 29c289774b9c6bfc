package production

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"bakehouse/internal/models"
)

const (
	orderPrefix      = "MD-"
	firstOrderNumber = 1001
)

var batchSeq = regexp.MustCompile(`-(\d+)$`)

// BatchPrefix labels dough batches of a recipe: the initials of the first
// two words ("Moonlight Morsels" is "MM"), else the first two letters.
func BatchPrefix(displayName string) string {
	words := strings.Fields(displayName)
	if len(words) >= 2 {
		return strings.ToUpper(firstRune(words[0]) + firstRune(words[1]))
	}
	r := []rune(displayName)
	if len(r) > 2 {
		r = r[:2]
	}
	return strings.ToUpper(string(r))
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}

// NextBatchNumber returns the next PREFIX-NNN label for recipeID, one past
// the highest sequence among that recipe's existing batches.
func NextBatchNumber(prefix string, recipeID uint, existing []models.DoughBall) string {
	highest := 0
	for _, d := range existing {
		if d.RecipeID != recipeID {
			continue
		}
		m := batchSeq.FindStringSubmatch(d.BatchNumber)
		if m == nil {
			continue
		}
		if n, err := strconv.Atoi(m[1]); err == nil && n > highest {
			highest = n
		}
	}
	return fmt.Sprintf("%s-%03d", prefix, highest+1)
}

// NextOrderNumber returns MD-<highest+1>, starting at MD-1001. Numbers
// without the MD- prefix are ignored.
func NextOrderNumber(existing []string) string {
	next := firstOrderNumber
	found := false
	highest := 0
	for _, s := range existing {
		if !strings.HasPrefix(s, orderPrefix) {
			continue
		}
		n, err := strconv.Atoi(strings.TrimPrefix(s, orderPrefix))
		if err != nil {
			continue
		}
		if !found || n > highest {
			highest = n
			found = true
		}
	}
	if found {
		next = highest + 1
	}
	return orderPrefix + strconv.Itoa(next)
}
