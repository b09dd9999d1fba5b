/*
Package accesssdk is a client for the VistorIA access service.

Other VistorIA services use it to ask what an account may do and to spend
credits on its behalf; the landlord review page uses it to fetch a shared
dispute with an access link.

# Internal calls

Internal calls carry the caller's identity provider session token:

	client := accesssdk.NewClient("https://access.vistoriapro.com.br")
	session := client.WithSession(sessionJWT)

	ent, err := session.Entitlements(ctx)
	if !ent.HasCapacity {
		// show the pricing page
	}

	res, err := session.ConsumeCredit(ctx, accesssdk.ActionAIAnalysis)
	if errors.Is(err, accesssdk.ErrInsufficientCredits) {
		// balance reached zero between the check and the call
	}

	link, err := session.ShareDispute(ctx, disputeID, accesssdk.ShareDisputeRequest{
		Email: "landlord@example.com",
	})

# Landlord calls

Landlords have no account. The link token they received is their only
credential:

	dispute, err := client.SharedDispute(ctx, linkToken, disputeID)

Failed landlord calls return an *APIError whose Description is already
localized for the Accept-Language set on the client.

# Errors

Every non-2xx response becomes an *APIError. Match on the status helpers
(IsUnauthorized, IsForbidden, IsNotFound) or with errors.Is against the
predefined values, which compare by code.
*/
package accesssdk
