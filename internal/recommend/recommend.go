// Package recommend turns missing capabilities into fixed DevOps advice.
package recommend

// Capability keys, in the order their advice is emitted.
const (
	CICD                    = "ci_cd"
	Monitoring              = "monitoring"
	InfrastructureAsCode    = "infrastructure_as_code"
	Collaboration           = "collaboration"
	Security                = "security"
	AutomatedTesting        = "automated_testing"
	ConfigurationManagement = "configuration_management"
	ContinuousFeedback      = "continuous_feedback"
)

type advice struct {
	key  string
	text string
}

var catalogue = []advice{
	{CICD, "Implement CI/CD pipelines to automate testing and deployment. Consider using tools like Jenkins, GitHub Actions, or GitLab CI/CD."},
	{Monitoring, "Establish monitoring and logging practices to track application performance. Tools like Prometheus, Grafana, and ELK stack can be useful."},
	{InfrastructureAsCode, "Adopt Infrastructure as Code (IaC) to manage and provision infrastructure. Tools like Terraform, AWS CloudFormation, or Ansible can help."},
	{Collaboration, "Enhance collaboration tools and practices among development and operations teams. Consider using Slack, Microsoft Teams, or Jira for better communication and project management."},
	{Security, "Integrate security practices into the development lifecycle (DevSecOps). Implement tools like Snyk, OWASP ZAP, or Checkmarx for security scanning and vulnerability management."},
	{AutomatedTesting, "Implement automated testing to ensure code quality and reduce manual testing efforts. Use frameworks like Selenium, PyTest, or JUnit."},
	{ConfigurationManagement, "Adopt configuration management practices to maintain consistency across environments. Tools like Chef, Puppet, or SaltStack can be useful."},
	{ContinuousFeedback, "Establish continuous feedback loops to gather insights from users and stakeholders. Use tools like UserVoice, SurveyMonkey, or direct feedback channels."},
}

// Capabilities returns the capability keys in emission order.
func Capabilities() []string {
	keys := make([]string, 0, len(catalogue))
	for _, a := range catalogue {
		keys = append(keys, a.key)
	}
	return keys
}

// SuggestImprovements returns one advisory string for every capability that
// is absent or false in flags. A nil map yields all of them.
func SuggestImprovements(flags map[string]bool) []string {
	recommendations := []string{}
	for _, a := range catalogue {
		if !flags[a.key] {
			recommendations = append(recommendations, a.text)
		}
	}
	return recommendations
}
