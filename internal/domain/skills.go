package domain

import "strings"

// SkillSet is the in-progress skill list of one edit session.
// Duplicates are only prevented for additions made through Add.
type SkillSet []string

// Add trims the input and appends it unless it is empty or already present.
// Matching is exact and case-sensitive.
func (s SkillSet) Add(skill string) SkillSet {
	skill = strings.TrimSpace(skill)
	if skill == "" || s.Contains(skill) {
		return s
	}
	return append(s, skill)
}

// Remove drops every exact match. Removing an absent skill is a no-op.
func (s SkillSet) Remove(skill string) SkillSet {
	out := make(SkillSet, 0, len(s))
	for _, v := range s {
		if v != skill {
			out = append(out, v)
		}
	}
	return out
}

func (s SkillSet) Contains(skill string) bool {
	for _, v := range s {
		if v == skill {
			return true
		}
	}
	return false
}
