// Package menu builds the alternate-flow choices offered in a button's
// dropdown. Each choice re-enters the orchestrator with an overridden buyer
// intent
package menu
