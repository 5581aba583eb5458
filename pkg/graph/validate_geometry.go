package graph

import "fmt"

// ---------------------------------------------------------------------------
// Tier 2: geometric validation (errors + warnings)
// ---------------------------------------------------------------------------

// validateGeometry runs all Tier 2 geometric checks.
// Returns errors (blocking) and warnings (advisory) separately.
func validateGeometry(g *DesignGraph) ([]ValidationError, []ValidationWarning) {
	var errs []ValidationError
	var warnings []ValidationWarning

	errs = append(errs, validateDimensions(g)...)

	warnings = append(warnings, validateSameOperands(g)...)
	warnings = append(warnings, validateIdentityTransforms(g)...)

	return errs, warnings
}

// dimensionError builds the error for a non-positive primitive dimension.
func dimensionError(node *Node, what string, v float64) ValidationError {
	return ValidationError{
		NodeID:   node.ID,
		Message:  fmt.Sprintf("%s is %.4f, must be positive", what, v),
		Severity: SeverityError,
	}
}

// validateDimensions checks that every primitive has positive dimensions,
// that cylinder segment counts are usable and that a torus hole is smaller
// than the torus.
func validateDimensions(g *DesignGraph) []ValidationError {
	var errs []ValidationError

	for _, node := range g.Nodes {
		switch d := node.Data.(type) {
		case BoxData:
			if d.Size.X <= 0 {
				errs = append(errs, dimensionError(node, "box dimension X", d.Size.X))
			}
			if d.Size.Y <= 0 {
				errs = append(errs, dimensionError(node, "box dimension Y", d.Size.Y))
			}
			if d.Size.Z <= 0 {
				errs = append(errs, dimensionError(node, "box dimension Z", d.Size.Z))
			}

		case CylinderData:
			if d.Height <= 0 {
				errs = append(errs, dimensionError(node, "cylinder height", d.Height))
			}
			if d.Radius <= 0 {
				errs = append(errs, dimensionError(node, "cylinder radius", d.Radius))
			}
			if d.Segments != 0 && d.Segments < 3 {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("cylinder has %d segments, need at least 3", d.Segments),
					Severity: SeverityError,
				})
			}

		case TorusData:
			if d.Inner <= 0 {
				errs = append(errs, dimensionError(node, "torus inner radius", d.Inner))
			}
			if d.Outer <= d.Inner {
				errs = append(errs, ValidationError{
					NodeID:   node.ID,
					Message:  fmt.Sprintf("torus outer radius %.4f must exceed inner radius %.4f", d.Outer, d.Inner),
					Severity: SeverityError,
				})
			}
		}
	}

	return errs
}

// validateSameOperands warns when a boolean combines a node with itself.
// The result is well defined (a union or intersection returns the operand,
// a difference is empty) but is rarely intended.
func validateSameOperands(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Nodes {
		bd, ok := node.Data.(BooleanData)
		if !ok || len(node.Children) != 2 {
			continue
		}
		if node.Children[0] == node.Children[1] {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: fmt.Sprintf("%s of node %s with itself", bd.Op, node.Children[0].Short()),
			})
		}
	}

	return warnings
}

// validateIdentityTransforms warns about transforms that move nothing.
func validateIdentityTransforms(g *DesignGraph) []ValidationWarning {
	var warnings []ValidationWarning

	for _, node := range g.Nodes {
		td, ok := node.Data.(TransformData)
		if !ok {
			continue
		}
		moves := td.Translation != nil && !td.Translation.IsZero()
		turns := td.Rotation != nil && !td.Rotation.IsZero()
		if !moves && !turns {
			warnings = append(warnings, ValidationWarning{
				NodeID:  node.ID,
				Message: "transform has no effect",
			})
		}
	}

	return warnings
}
