package domain

import "fmt"

// WorkloadReviewStatus maps a reviewer's decision to the status string the
// backend expects, e.g. mentor + approved -> mentor_approved.
func WorkloadReviewStatus(r Role, d Decision) (WorkloadStatus, error) {
	if !CanReviewWorkloads(r) {
		return "", fmt.Errorf("role %s cannot review workloads", r)
	}
	if !Valid(Decisions, d) {
		return "", fmt.Errorf("invalid decision %q", d)
	}
	return WorkloadStatus(string(r) + "_" + string(d)), nil
}

// CommentField is the request field carrying a reviewer's comment.
func CommentField(r Role) string {
	return string(r) + "_comment"
}

// ProjectReviewStatus maps a decision to the project review status.
func ProjectReviewStatus(d Decision) (ReviewStatus, error) {
	switch d {
	case DecisionApproved:
		return ReviewApproved, nil
	case DecisionRejected:
		return ReviewRejected, nil
	}
	return "", fmt.Errorf("invalid decision %q", d)
}
