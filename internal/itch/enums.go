package itch

import "fmt"

// Enumeration types are byte-valued: the constant IS the wire code. Each type
// carries one name table which serves both membership validation during decode
// and String(). Decoding a code outside the table is a failure; there is no
// "unknown variant" fallback.

// enumString looks up v in its name table, falling back to a diagnostic form
// for values that never came through a decoder.
func enumString[T ~byte](names map[T]string, v T, kind string) string {
	if s, ok := names[v]; ok {
		return s
	}
	return fmt.Sprintf("%s(%q)", kind, byte(v))
}

// decodeEnum validates b against the name table for T.
func decodeEnum[T ~byte](names map[T]string, b byte, kind string) (T, error) {
	v := T(b)
	if _, ok := names[v]; !ok {
		return 0, fmt.Errorf("%w: %s %q", ErrUnknownCode, kind, b)
	}
	return v, nil
}

// -----------------------------------------------------------------------------
// System Event (S)
// -----------------------------------------------------------------------------

// EventCode identifies a system event.
type EventCode byte

const (
	EventStartOfMessages    EventCode = 'O'
	EventStartOfSystemHours EventCode = 'S'
	EventStartOfMarketHours EventCode = 'Q'
	EventEndOfMarketHours   EventCode = 'M'
	EventEndOfSystemHours   EventCode = 'E'
	EventEndOfMessages      EventCode = 'C'
)

var eventCodeNames = map[EventCode]string{
	EventStartOfMessages:    "StartOfMessages",
	EventStartOfSystemHours: "StartOfSystemHours",
	EventStartOfMarketHours: "StartOfMarketHours",
	EventEndOfMarketHours:   "EndOfMarketHours",
	EventEndOfSystemHours:   "EndOfSystemHours",
	EventEndOfMessages:      "EndOfMessages",
}

func (c EventCode) String() string { return enumString(eventCodeNames, c, "EventCode") }

// -----------------------------------------------------------------------------
// Stock Directory (R)
// -----------------------------------------------------------------------------

// MarketCategory is the listing venue for an issue.
type MarketCategory byte

const (
	CategoryNasdaqGlobalSelect MarketCategory = 'Q'
	CategoryNasdaqGlobalMarket MarketCategory = 'G'
	CategoryNasdaqCapital      MarketCategory = 'S'
	CategoryNYSE               MarketCategory = 'N'
	CategoryNYSEMkt            MarketCategory = 'A'
	CategoryNYSEArca           MarketCategory = 'P'
	CategoryBatsZ              MarketCategory = 'Z'
	CategoryUnavailable        MarketCategory = ' '
)

var marketCategoryNames = map[MarketCategory]string{
	CategoryNasdaqGlobalSelect: "NasdaqGlobalSelect",
	CategoryNasdaqGlobalMarket: "NasdaqGlobalMarket",
	CategoryNasdaqCapital:      "NasdaqCapitalMarket",
	CategoryNYSE:               "NYSE",
	CategoryNYSEMkt:            "NYSEMkt",
	CategoryNYSEArca:           "NYSEArca",
	CategoryBatsZ:              "BatsZExchange",
	CategoryUnavailable:        "Unavailable",
}

func (c MarketCategory) String() string {
	return enumString(marketCategoryNames, c, "MarketCategory")
}

// FinancialStatus is the SEC financial status indicator for an issue.
type FinancialStatus byte

const (
	FinancialNormal                      FinancialStatus = 'N'
	FinancialDeficient                   FinancialStatus = 'D'
	FinancialDelinquent                  FinancialStatus = 'E'
	FinancialBankrupt                    FinancialStatus = 'Q'
	FinancialSuspended                   FinancialStatus = 'S'
	FinancialDeficientBankrupt           FinancialStatus = 'G'
	FinancialDeficientDelinquent         FinancialStatus = 'H'
	FinancialDelinquentBankrupt          FinancialStatus = 'J'
	FinancialDeficientDelinquentBankrupt FinancialStatus = 'K'
	FinancialETPSuspended                FinancialStatus = 'C'
	FinancialUnavailable                 FinancialStatus = ' '
)

var financialStatusNames = map[FinancialStatus]string{
	FinancialNormal:                      "Normal",
	FinancialDeficient:                   "Deficient",
	FinancialDelinquent:                  "Delinquent",
	FinancialBankrupt:                    "Bankrupt",
	FinancialSuspended:                   "Suspended",
	FinancialDeficientBankrupt:           "DeficientBankrupt",
	FinancialDeficientDelinquent:         "DeficientDelinquent",
	FinancialDelinquentBankrupt:          "DelinquentBankrupt",
	FinancialDeficientDelinquentBankrupt: "DeficientDelinquentBankrupt",
	FinancialETPSuspended:                "ETPSuspended",
	FinancialUnavailable:                 "Unavailable",
}

func (c FinancialStatus) String() string {
	return enumString(financialStatusNames, c, "FinancialStatus")
}

// IssueClassification is the security class of an issue.
type IssueClassification byte

const (
	ClassAmericanDepositaryShare    IssueClassification = 'A'
	ClassBond                       IssueClassification = 'B'
	ClassCommonStock                IssueClassification = 'C'
	ClassDepositoryReceipt          IssueClassification = 'F'
	Class144A                       IssueClassification = 'I'
	ClassLimitedPartnership         IssueClassification = 'L'
	ClassNotes                      IssueClassification = 'N'
	ClassOrdinaryShare              IssueClassification = 'O'
	ClassPreferredStock             IssueClassification = 'P'
	ClassOtherSecurities            IssueClassification = 'Q'
	ClassRight                      IssueClassification = 'R'
	ClassSharesOfBeneficialInterest IssueClassification = 'S'
	ClassConvertibleDebenture       IssueClassification = 'T'
	ClassUnit                       IssueClassification = 'U'
	ClassUnitsPerBenifInt           IssueClassification = 'V'
	ClassWarrant                    IssueClassification = 'W'
)

var issueClassificationNames = map[IssueClassification]string{
	ClassAmericanDepositaryShare:    "AmericanDepositaryShare",
	ClassBond:                       "Bond",
	ClassCommonStock:                "CommonStock",
	ClassDepositoryReceipt:          "DepositoryReceipt",
	Class144A:                       "144A",
	ClassLimitedPartnership:         "LimitedPartnership",
	ClassNotes:                      "Notes",
	ClassOrdinaryShare:              "OrdinaryShare",
	ClassPreferredStock:             "PreferredStock",
	ClassOtherSecurities:            "OtherSecurities",
	ClassRight:                      "Right",
	ClassSharesOfBeneficialInterest: "SharesOfBeneficialInterest",
	ClassConvertibleDebenture:       "ConvertibleDebenture",
	ClassUnit:                       "Unit",
	ClassUnitsPerBenifInt:           "UnitsPerBenifInt",
	ClassWarrant:                    "Warrant",
}

func (c IssueClassification) String() string {
	return enumString(issueClassificationNames, c, "IssueClassification")
}

// IssueSubType is the two-character issue sub-type code, packed big-endian
// into a uint16. Single-letter codes carry a trailing space on the wire and
// in the packed value.
type IssueSubType uint16

// subType packs a 2-character code.
func subType(a, b byte) IssueSubType { return IssueSubType(uint16(a)<<8 | uint16(b)) }

const (
	SubTypePreferredTrustSecurities         IssueSubType = 'A'<<8 | ' '
	SubTypeAlphaIndexETNs                   IssueSubType = 'A'<<8 | 'I'
	SubTypeIndexBasedDerivative             IssueSubType = 'B'<<8 | ' '
	SubTypeCommonShares                     IssueSubType = 'C'<<8 | ' '
	SubTypeCommodityBasedTrustShares        IssueSubType = 'C'<<8 | 'B'
	SubTypeCommodityFuturesTrustShares      IssueSubType = 'C'<<8 | 'F'
	SubTypeCommodityLinkedSecurities        IssueSubType = 'C'<<8 | 'L'
	SubTypeCommodityIndexTrustShares        IssueSubType = 'C'<<8 | 'M'
	SubTypeCollateralizedMortgageObligation IssueSubType = 'C'<<8 | 'O'
	SubTypeCurrencyTrustShares              IssueSubType = 'C'<<8 | 'T'
	SubTypeCommodityCurrencyLinked          IssueSubType = 'C'<<8 | 'U'
	SubTypeCurrencyWarrants                 IssueSubType = 'C'<<8 | 'W'
	SubTypeGlobalDepositaryShares           IssueSubType = 'D'<<8 | ' '
	SubTypeETFPortfolioDepositaryReceipt    IssueSubType = 'E'<<8 | ' '
	SubTypeEquityGoldShares                 IssueSubType = 'E'<<8 | 'G'
	SubTypeETNEquityIndexLinked             IssueSubType = 'E'<<8 | 'I'
	SubTypeExchangeTradedManagedFunds       IssueSubType = 'E'<<8 | 'M'
	SubTypeExchangeTradedNotes              IssueSubType = 'E'<<8 | 'N'
	SubTypeEquityUnits                      IssueSubType = 'E'<<8 | 'U'
	SubTypeHoldrs                           IssueSubType = 'F'<<8 | ' '
	SubTypeETNFixedIncomeLinked             IssueSubType = 'F'<<8 | 'I'
	SubTypeETNFuturesLinked                 IssueSubType = 'F'<<8 | 'L'
	SubTypeGlobalShares                     IssueSubType = 'G'<<8 | ' '
	SubTypeETFIndexFundShares               IssueSubType = 'I'<<8 | ' '
	SubTypeInterestRate                     IssueSubType = 'I'<<8 | 'R'
	SubTypeIndexWarrant                     IssueSubType = 'I'<<8 | 'W'
	SubTypeIndexLinkedExchangeableNotes     IssueSubType = 'I'<<8 | 'X'
	SubTypeCorporateBackedTrustSecurity     IssueSubType = 'J'<<8 | ' '
	SubTypeContingentLitigationRight        IssueSubType = 'L'<<8 | ' '
	SubTypeLLC                              IssueSubType = 'L'<<8 | 'L'
	SubTypeEquityBasedDerivative            IssueSubType = 'M'<<8 | ' '
	SubTypeManagedFundShares                IssueSubType = 'M'<<8 | 'F'
	SubTypeETNMultiFactorIndexLinked        IssueSubType = 'M'<<8 | 'L'
	SubTypeManagedTrustSecurities           IssueSubType = 'M'<<8 | 'T'
	SubTypeNYRegistryShares                 IssueSubType = 'N'<<8 | ' '
	SubTypeOpenEndedMutualFund              IssueSubType = 'O'<<8 | ' '
	SubTypePrivatelyHeldSecurity            IssueSubType = 'P'<<8 | ' '
	SubTypePoisonPill                       IssueSubType = 'P'<<8 | 'P'
	SubTypePartnershipUnits                 IssueSubType = 'P'<<8 | 'U'
	SubTypeClosedEndFunds                   IssueSubType = 'Q'<<8 | ' '
	SubTypeRegS                             IssueSubType = 'R'<<8 | ' '
	SubTypeCommodityRedeemableCommodity     IssueSubType = 'R'<<8 | 'C'
	SubTypeETNRedeemableFuturesLinked       IssueSubType = 'R'<<8 | 'F'
	SubTypeCommodityRedeemableCurrency      IssueSubType = 'R'<<8 | 'T'
	SubTypeSeed                             IssueSubType = 'R'<<8 | 'U'
	SubTypeSpotRateClosing                  IssueSubType = 'S'<<8 | ' '
	SubTypeSpotRateIntraday                 IssueSubType = 'S'<<8 | 'C'
	SubTypeTrackingStock                    IssueSubType = 'T'<<8 | ' '
	SubTypeTrustCertificates                IssueSubType = 'T'<<8 | 'C'
	SubTypeTrustUnits                       IssueSubType = 'T'<<8 | 'F'
	SubTypePortal                           IssueSubType = 'U'<<8 | ' '
	SubTypeContingentValueRight             IssueSubType = 'V'<<8 | ' '
	SubTypeTrustIssuedReceipts              IssueSubType = 'W'<<8 | ' '
	SubTypeWorldCurrencyOption              IssueSubType = 'W'<<8 | 'C'
	SubTypeTrust                            IssueSubType = 'X'<<8 | ' '
	SubTypeOther                            IssueSubType = 'Y'<<8 | ' '
	SubTypeNotApplicable                    IssueSubType = 'Z'<<8 | ' '
)

var issueSubTypeNames = map[IssueSubType]string{
	SubTypePreferredTrustSecurities:         "PreferredTrustSecurities",
	SubTypeAlphaIndexETNs:                   "AlphaIndexETNs",
	SubTypeIndexBasedDerivative:             "IndexBasedDerivative",
	SubTypeCommonShares:                     "CommonShares",
	SubTypeCommodityBasedTrustShares:        "CommodityBasedTrustShares",
	SubTypeCommodityFuturesTrustShares:      "CommodityFuturesTrustShares",
	SubTypeCommodityLinkedSecurities:        "CommodityLinkedSecurities",
	SubTypeCommodityIndexTrustShares:        "CommodityIndexTrustShares",
	SubTypeCollateralizedMortgageObligation: "CollateralizedMortgageObligation",
	SubTypeCurrencyTrustShares:              "CurrencyTrustShares",
	SubTypeCommodityCurrencyLinked:          "CommodityCurrencyLinkedSecurities",
	SubTypeCurrencyWarrants:                 "CurrencyWarrants",
	SubTypeGlobalDepositaryShares:           "GlobalDepositaryShares",
	SubTypeETFPortfolioDepositaryReceipt:    "ETFPortfolioDepositaryReceipt",
	SubTypeEquityGoldShares:                 "EquityGoldShares",
	SubTypeETNEquityIndexLinked:             "ETNEquityIndexLinkedSecurities",
	SubTypeExchangeTradedManagedFunds:       "ExchangeTradedManagedFunds",
	SubTypeExchangeTradedNotes:              "ExchangeTradedNotes",
	SubTypeEquityUnits:                      "EquityUnits",
	SubTypeHoldrs:                           "Holdrs",
	SubTypeETNFixedIncomeLinked:             "ETNFixedIncomeLinkedSecurities",
	SubTypeETNFuturesLinked:                 "ETNFuturesLinkedSecurities",
	SubTypeGlobalShares:                     "GlobalShares",
	SubTypeETFIndexFundShares:               "ETFIndexFundShares",
	SubTypeInterestRate:                     "InterestRate",
	SubTypeIndexWarrant:                     "IndexWarrant",
	SubTypeIndexLinkedExchangeableNotes:     "IndexLinkedExchangeableNotes",
	SubTypeCorporateBackedTrustSecurity:     "CorporateBackedTrustSecurity",
	SubTypeContingentLitigationRight:        "ContingentLitigationRight",
	SubTypeLLC:                              "LLC",
	SubTypeEquityBasedDerivative:            "EquityBasedDerivative",
	SubTypeManagedFundShares:                "ManagedFundShares",
	SubTypeETNMultiFactorIndexLinked:        "ETNMultiFactorIndexLinkedSecurities",
	SubTypeManagedTrustSecurities:           "ManagedTrustSecurities",
	SubTypeNYRegistryShares:                 "NYRegistryShares",
	SubTypeOpenEndedMutualFund:              "OpenEndedMutualFund",
	SubTypePrivatelyHeldSecurity:            "PrivatelyHeldSecurity",
	SubTypePoisonPill:                       "PoisonPill",
	SubTypePartnershipUnits:                 "PartnershipUnits",
	SubTypeClosedEndFunds:                   "ClosedEndFunds",
	SubTypeRegS:                             "RegS",
	SubTypeCommodityRedeemableCommodity:     "CommodityRedeemableCommodityLinkedSecurities",
	SubTypeETNRedeemableFuturesLinked:       "ETNRedeemableFuturesLinkedSecurities",
	SubTypeCommodityRedeemableCurrency:      "CommodityRedeemableCurrencyLinkedSecurities",
	SubTypeSeed:                             "Seed",
	SubTypeSpotRateClosing:                  "SpotRateClosing",
	SubTypeSpotRateIntraday:                 "SpotRateIntraday",
	SubTypeTrackingStock:                    "TrackingStock",
	SubTypeTrustCertificates:                "TrustCertificates",
	SubTypeTrustUnits:                       "TrustUnits",
	SubTypePortal:                           "Portal",
	SubTypeContingentValueRight:             "ContingentValueRight",
	SubTypeTrustIssuedReceipts:              "TrustIssuedReceipts",
	SubTypeWorldCurrencyOption:              "WorldCurrencyOption",
	SubTypeTrust:                            "Trust",
	SubTypeOther:                            "Other",
	SubTypeNotApplicable:                    "NotApplicable",
}

func (c IssueSubType) String() string {
	if s, ok := issueSubTypeNames[c]; ok {
		return s
	}
	return fmt.Sprintf("IssueSubType(%q)", string([]byte{byte(c >> 8), byte(c)}))
}

// decodeIssueSubType validates a 2-character code.
func decodeIssueSubType(a, b byte) (IssueSubType, error) {
	c := subType(a, b)
	if _, ok := issueSubTypeNames[c]; !ok {
		return 0, fmt.Errorf("%w: issue sub-type %q", ErrUnknownCode, string([]byte{a, b}))
	}
	return c, nil
}

// Authenticity distinguishes live issues from test issues.
type Authenticity byte

const (
	AuthenticityProduction Authenticity = 'P'
	AuthenticityTest       Authenticity = 'T'
)

var authenticityNames = map[Authenticity]string{
	AuthenticityProduction: "Production",
	AuthenticityTest:       "Test",
}

func (c Authenticity) String() string { return enumString(authenticityNames, c, "Authenticity") }

// LuldRefPriceTier is the Limit Up/Limit Down reference price tier.
type LuldRefPriceTier byte

const (
	LuldTier1 LuldRefPriceTier = '1'
	LuldTier2 LuldRefPriceTier = '2'
	LuldNA    LuldRefPriceTier = ' '
)

var luldTierNames = map[LuldRefPriceTier]string{
	LuldTier1: "Tier1",
	LuldTier2: "Tier2",
	LuldNA:    "NA",
}

func (c LuldRefPriceTier) String() string { return enumString(luldTierNames, c, "LuldRefPriceTier") }

// -----------------------------------------------------------------------------
// Trading Action (H), Reg SHO (Y)
// -----------------------------------------------------------------------------

// TradingState is the current trading state for a stock.
type TradingState byte

const (
	StateHalted        TradingState = 'H'
	StatePaused        TradingState = 'P'
	StateQuotationOnly TradingState = 'Q'
	StateTrading       TradingState = 'T'
)

var tradingStateNames = map[TradingState]string{
	StateHalted:        "Halted",
	StatePaused:        "Paused",
	StateQuotationOnly: "QuotationOnly",
	StateTrading:       "Trading",
}

func (c TradingState) String() string { return enumString(tradingStateNames, c, "TradingState") }

// RegShoAction is the Reg SHO short sale price test restriction state.
type RegShoAction byte

const (
	RegShoNone     RegShoAction = '0'
	RegShoIntraday RegShoAction = '1'
	RegShoExtant   RegShoAction = '2'
)

var regShoActionNames = map[RegShoAction]string{
	RegShoNone:     "None",
	RegShoIntraday: "Intraday",
	RegShoExtant:   "Extant",
}

func (c RegShoAction) String() string { return enumString(regShoActionNames, c, "RegShoAction") }

// -----------------------------------------------------------------------------
// Market Participant Position (L)
// -----------------------------------------------------------------------------

// MarketMakerMode is the quoting mode of a market maker.
type MarketMakerMode byte

const (
	MMModeNormal       MarketMakerMode = 'N'
	MMModePassive      MarketMakerMode = 'P'
	MMModeSyndicate    MarketMakerMode = 'S'
	MMModePresyndicate MarketMakerMode = 'R'
	MMModePenalty      MarketMakerMode = 'L'
)

var marketMakerModeNames = map[MarketMakerMode]string{
	MMModeNormal:       "Normal",
	MMModePassive:      "Passive",
	MMModeSyndicate:    "Syndicate",
	MMModePresyndicate: "Presyndicate",
	MMModePenalty:      "Penalty",
}

func (c MarketMakerMode) String() string {
	return enumString(marketMakerModeNames, c, "MarketMakerMode")
}

// MarketParticipantState is the registration state of a market participant.
type MarketParticipantState byte

const (
	ParticipantActive    MarketParticipantState = 'A'
	ParticipantExcused   MarketParticipantState = 'E'
	ParticipantWithdrawn MarketParticipantState = 'W'
	ParticipantSuspended MarketParticipantState = 'S'
	ParticipantDeleted   MarketParticipantState = 'D'
)

var participantStateNames = map[MarketParticipantState]string{
	ParticipantActive:    "Active",
	ParticipantExcused:   "Excused",
	ParticipantWithdrawn: "Withdrawn",
	ParticipantSuspended: "Suspended",
	ParticipantDeleted:   "Deleted",
}

func (c MarketParticipantState) String() string {
	return enumString(participantStateNames, c, "MarketParticipantState")
}

// -----------------------------------------------------------------------------
// Orders and trades (A/F/P), crosses (Q/I)
// -----------------------------------------------------------------------------

// Side is the buy/sell indicator on displayed orders and trades.
type Side byte

const (
	SideBuy  Side = 'B'
	SideSell Side = 'S'
)

var sideNames = map[Side]string{
	SideBuy:  "Buy",
	SideSell: "Sell",
}

func (c Side) String() string { return enumString(sideNames, c, "Side") }

// ImbalanceDirection is the direction of a net order imbalance.
type ImbalanceDirection byte

const (
	ImbalanceBuy                ImbalanceDirection = 'B'
	ImbalanceSell               ImbalanceDirection = 'S'
	ImbalanceNone               ImbalanceDirection = 'N'
	ImbalanceInsufficientOrders ImbalanceDirection = 'O'
)

var imbalanceDirectionNames = map[ImbalanceDirection]string{
	ImbalanceBuy:                "Buy",
	ImbalanceSell:               "Sell",
	ImbalanceNone:               "None",
	ImbalanceInsufficientOrders: "InsufficientOrders",
}

func (c ImbalanceDirection) String() string {
	return enumString(imbalanceDirectionNames, c, "ImbalanceDirection")
}

// CrossType identifies the Nasdaq cross session for a cross trade.
type CrossType byte

const (
	CrossOpening  CrossType = 'O'
	CrossClosing  CrossType = 'C'
	CrossHaltIPO  CrossType = 'H'
	CrossIntraday CrossType = 'I'
)

var crossTypeNames = map[CrossType]string{
	CrossOpening:  "Opening",
	CrossClosing:  "Closing",
	CrossHaltIPO:  "HaltIPO",
	CrossIntraday: "Intraday",
}

func (c CrossType) String() string { return enumString(crossTypeNames, c, "CrossType") }

// -----------------------------------------------------------------------------
// IPO Quoting Period (K), MWCB Status (W), RPII (N)
// -----------------------------------------------------------------------------

// IPOReleaseQualifier qualifies an IPO quotation release time.
type IPOReleaseQualifier byte

const (
	IPOAnticipated          IPOReleaseQualifier = 'A'
	IPOCancelledOrPostponed IPOReleaseQualifier = 'C'
)

var ipoReleaseQualifierNames = map[IPOReleaseQualifier]string{
	IPOAnticipated:          "Anticipated",
	IPOCancelledOrPostponed: "CancelledOrPostponed",
}

func (c IPOReleaseQualifier) String() string {
	return enumString(ipoReleaseQualifierNames, c, "IPOReleaseQualifier")
}

// BreachedLevel is the market-wide circuit breaker level that was breached.
type BreachedLevel byte

const (
	BreachLevel1 BreachedLevel = '1'
	BreachLevel2 BreachedLevel = '2'
	BreachLevel3 BreachedLevel = '3'
)

var breachedLevelNames = map[BreachedLevel]string{
	BreachLevel1: "Level1",
	BreachLevel2: "Level2",
	BreachLevel3: "Level3",
}

func (c BreachedLevel) String() string { return enumString(breachedLevelNames, c, "BreachedLevel") }

// InterestFlag describes which side(s) of a stock have retail price
// improvement interest.
type InterestFlag byte

const (
	InterestBuy  InterestFlag = 'B'
	InterestSell InterestFlag = 'S'
	InterestBoth InterestFlag = 'A'
	InterestNone InterestFlag = 'N'
)

var interestFlagNames = map[InterestFlag]string{
	InterestBuy:  "Buy",
	InterestSell: "Sell",
	InterestBoth: "Both",
	InterestNone: "None",
}

func (c InterestFlag) String() string { return enumString(interestFlagNames, c, "InterestFlag") }
