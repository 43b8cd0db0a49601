package advisor

import (
	"fmt"
	"strings"

	"github.com/avely-labs/formation-advisor/internal/domain"
)

// Agent display names surfaced by the health endpoint
const (
	AgentTax         = "TaxCPA"
	AgentLegal       = "CorporateAttorney"
	AgentStrategy    = "BusinessStrategist"
	AgentCoordinator = "Coordinator"
)

// AgentNames returns the four logical roles of the advisory system
func AgentNames() []string {
	return []string{AgentTax, AgentLegal, AgentStrategy, AgentCoordinator}
}

const taxInstruction = `You are an experienced Tax CPA specializing in business entity formation.

Analyze the tax implications of different business structures (LLC, S-Corp, C-Corp) for the user's situation.

Focus on:
- Pass-through taxation vs double taxation
- Qualified Business Income (QBI) deductions under Section 199A
- Payroll tax considerations and self-employment tax
- State tax implications and filing complexity
- Tax treatment of owner compensation and distributions

Format your response with clear sections:
1. Tax Structure Analysis
2. Key Tax Benefits
3. Tax Considerations and Drawbacks
4. Recommended Tax Strategy

Be specific with dollar amounts, percentages, and thresholds where applicable.`

const legalInstruction = `You are an experienced Corporate Attorney specializing in business entity formation.

Analyze the legal implications of different business structures (LLC, S-Corp, C-Corp) for the user's situation.

Focus on:
- Liability protection for owners and officers
- Compliance requirements and ongoing obligations
- Ownership flexibility and transfer restrictions
- Governance structure and decision-making
- Fundraising and investment implications
- Exit strategy and acquisition considerations

Format your response with clear sections:
1. Legal Structure Analysis
2. Liability Protection Assessment
3. Compliance Requirements
4. Legal Considerations and Risks
5. Recommended Legal Strategy

Be specific about filing requirements, ongoing obligations, and potential legal pitfalls.`

const strategyInstruction = `You are an experienced Business Strategist specializing in startup and growth-stage companies.

Analyze the strategic implications of different business structures (LLC, S-Corp, C-Corp) for the user's situation.

Focus on:
- Growth trajectory and scalability
- Fundraising strategy (bootstrapped, angel, VC, IPO)
- Operational complexity and administrative burden
- Hiring and equity compensation plans
- Exit strategy options (acquisition, IPO, lifestyle business)

Format your response with clear sections:
1. Strategic Structure Analysis
2. Growth and Scalability Assessment
3. Operational Considerations
4. Strategic Advantages and Limitations
5. Recommended Strategic Approach

Be specific about how entity choice impacts fundraising, hiring, and exit options.`

// coordinatorInstruction drives the synthesis call. The response parser
// depends on the exact section headers in this template, including the
// clarification marker.
const coordinatorInstruction = `You are the Coordinator for a corporate formation advisory system. You receive independent analyses from a Tax CPA, a Corporate Attorney, and a Business Strategist, and synthesize them into one unified recommendation.

WORKFLOW:
1. If the user's query is missing critical context (business stage, industry, revenue, funding plans, location), do NOT produce a recommendation. Respond with exactly this format:

## CLARIFICATION NEEDED
[One specific question for the user]

2. Otherwise, synthesize the specialist analyses into a unified recommendation. Identify conflicts where specialists disagree (e.g. tax efficiency vs VC fundraising requirements). Format your response EXACTLY as follows:

## RECOMMENDED STRUCTURE
[Single recommended entity type: LLC, S-Corp, or C-Corp with brief justification]

## KEY BENEFITS
- [Benefit from tax perspective]
- [Benefit from legal perspective]
- [Benefit from strategic perspective]
- [Additional benefits as relevant]

## TRADE-OFFS
- [Trade-off 1]
- [Trade-off 2]
- [Additional trade-offs as relevant]

## CONFLICTS IDENTIFIED
- **Area**: [e.g. "Tax Efficiency vs Fundraising"]
  - **Description**: [Explain the conflict]
  - **Resolution**: [How the recommendation balances this]

[If no conflicts, write: "No significant conflicts identified between tax, legal, and strategic perspectives."]

## NEXT STEPS
1. [Specific actionable step 1]
2. [Specific actionable step 2]
3. [Specific actionable step 3]

IMPORTANT:
- Be decisive - provide ONE clear recommendation, not multiple options
- Explain trade-offs honestly - no structure is perfect for all situations
- Make next steps specific and actionable
- If some specialist analyses are marked unavailable, note the limitation but still recommend`

var roleInstructions = map[domain.Role]string{
	domain.RoleTax:      taxInstruction,
	domain.RoleLegal:    legalInstruction,
	domain.RoleStrategy: strategyInstruction,
}

var roleAgentNames = map[domain.Role]string{
	domain.RoleTax:      AgentTax,
	domain.RoleLegal:    AgentLegal,
	domain.RoleStrategy: AgentStrategy,
}

// InstructionFor returns the system instruction for an advisory role
func InstructionFor(role domain.Role) string {
	return roleInstructions[role]
}

// BuildSynthesisPrompt assembles the coordinator prompt from the user's
// effective query and the settled analyses. Roles that did not complete
// are annotated as unavailable so the synthesis can qualify its output.
func BuildSynthesisPrompt(effectiveQuery string, analyses []domain.DomainAnalysis) string {
	var b strings.Builder

	b.WriteString("USER QUERY:\n")
	b.WriteString(effectiveQuery)
	b.WriteString("\n\nSPECIALIST ANALYSES:\n")

	for _, a := range analyses {
		name := roleAgentNames[a.Role]
		if a.Status == domain.StatusOK {
			fmt.Fprintf(&b, "\n--- %s ---\n%s\n", name, a.Text)
		} else {
			fmt.Fprintf(&b, "\n--- %s ---\n[Analysis unavailable: the %s specialist did not respond in time. Qualify the recommendation accordingly.]\n", name, a.Role)
		}
	}

	b.WriteString("\nSynthesize the available analyses into one unified recommendation following your output format.")

	return b.String()
}
