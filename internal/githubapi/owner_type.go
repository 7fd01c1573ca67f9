package githubapi

const (
	ownerTypeUserConstant         OwnerType = "user"
	ownerTypeOrganizationConstant OwnerType = "org"
)

const organizationAccountTypeValueConstant = "Organization"

// OwnerType enumerates supported destination account scopes.
type OwnerType string

// UserOwnerType identifies personal GitHub accounts.
const UserOwnerType OwnerType = ownerTypeUserConstant

// OrganizationOwnerType identifies GitHub organizations.
const OrganizationOwnerType OwnerType = ownerTypeOrganizationConstant

// OwnerTypeFromAccountType maps the API account type discriminator onto an OwnerType.
// Unknown or empty values resolve to the user scope.
func OwnerTypeFromAccountType(accountTypeValue string) OwnerType {
	if accountTypeValue == organizationAccountTypeValueConstant {
		return OrganizationOwnerType
	}
	return UserOwnerType
}

// OrganizationParameter resolves the organization argument for repository creation.
// Personal accounts create repositories through the account-less endpoint.
func (ownerType OwnerType) OrganizationParameter(ownerAccount string) string {
	if ownerType == OrganizationOwnerType {
		return ownerAccount
	}
	return ""
}
