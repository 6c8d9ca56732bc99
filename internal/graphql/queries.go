package graphql

const referentialFragment = `
fragment ReferentialFragment on ReferentialVO {
  id
  label
  name
  entityName
  statusId
  levelId
  updateDate
  __typename
}`

const personFragment = `
fragment PersonFragment on PersonVO {
  id
  firstName
  lastName
  department {
    ...ReferentialFragment
  }
  __typename
}`

const vesselFragment = `
fragment VesselSnapshotFragment on VesselSnapshotVO {
  id
  name
  exteriorMarking
  registrationCode
  vesselType {
    ...ReferentialFragment
  }
  basePortLocation {
    ...ReferentialFragment
  }
  __typename
}`

const landingFragment = `
fragment LandingFragment on LandingVO {
  id
  updateDate
  creationDate
  comments
  controlDate
  validationDate
  qualificationDate
  qualityFlagId
  recorderDepartment {
    ...ReferentialFragment
  }
  recorderPerson {
    ...PersonFragment
  }
  program {
    ...ReferentialFragment
  }
  dateTime
  location {
    ...ReferentialFragment
  }
  vesselSnapshot {
    ...VesselSnapshotFragment
  }
  observedLocationId
  tripId
  rankOrder
  observers {
    ...PersonFragment
  }
  measurementValues
  __typename
}` + referentialFragment + personFragment + vesselFragment

const loadLandingsQuery = `
query Landings($filter: LandingFilterVOInput, $offset: Int, $size: Int, $sortBy: String, $sortDirection: String) {
  data: landings(filter: $filter, offset: $offset, size: $size, sortBy: $sortBy, sortDirection: $sortDirection) {
    ...LandingFragment
  }
  total: landingsCount(filter: $filter)
}` + landingFragment

const saveLandingMutation = `
mutation SaveLanding($landing: LandingVOInput!) {
  data: saveLanding(landing: $landing) {
    ...LandingFragment
  }
}` + landingFragment

const observedLocationFragment = `
fragment ObservedLocationFragment on ObservedLocationVO {
  id
  updateDate
  creationDate
  comments
  controlDate
  validationDate
  qualificationDate
  qualityFlagId
  recorderDepartment {
    ...ReferentialFragment
  }
  recorderPerson {
    ...PersonFragment
  }
  program {
    ...ReferentialFragment
  }
  startDateTime
  endDateTime
  location {
    ...ReferentialFragment
  }
  observers {
    ...PersonFragment
  }
  __typename
}` + referentialFragment + personFragment

const loadObservedLocationsQuery = `
query ObservedLocations($filter: ObservedLocationFilterVOInput, $offset: Int, $size: Int, $sortBy: String, $sortDirection: String) {
  data: observedLocations(filter: $filter, offset: $offset, size: $size, sortBy: $sortBy, sortDirection: $sortDirection) {
    ...ObservedLocationFragment
  }
  total: observedLocationsCount(filter: $filter)
}` + observedLocationFragment

const saveObservedLocationMutation = `
mutation SaveObservedLocation($observedLocation: ObservedLocationVOInput!) {
  data: saveObservedLocation(observedLocation: $observedLocation) {
    ...ObservedLocationFragment
  }
}` + observedLocationFragment

const operationFragment = `
fragment OperationFragment on OperationVO {
  id
  updateDate
  controlDate
  validationDate
  qualificationDate
  qualityFlagId
  recorderDepartment {
    ...ReferentialFragment
  }
  tripId
  rankOrderOnPeriod
  startDateTime
  endDateTime
  fishingStartDateTime
  fishingEndDateTime
  metier {
    id
    label
    name
    gear {
      ...ReferentialFragment
    }
    taxonGroup {
      ...ReferentialFragment
    }
    __typename
  }
  physicalGearId
  comments
  __typename
}` + referentialFragment

const loadOperationsQuery = `
query Operations($filter: OperationFilterVOInput, $offset: Int, $size: Int, $sortBy: String, $sortDirection: String) {
  data: operations(filter: $filter, offset: $offset, size: $size, sortBy: $sortBy, sortDirection: $sortDirection) {
    ...OperationFragment
  }
  total: operationsCount(filter: $filter)
}` + operationFragment

const saveOperationMutation = `
mutation SaveOperation($operation: OperationVOInput!) {
  data: saveOperation(operation: $operation) {
    ...OperationFragment
  }
}` + operationFragment

const taxonNameFragment = `
fragment TaxonNameFragment on TaxonNameVO {
  id
  label
  name
  entityName
  updateDate
  isReferent
  referenceTaxonId
  taxonGroupIds
  status {
    ...ReferentialFragment
  }
  __typename
}` + referentialFragment

const loadStrategiesQuery = `
query Strategies($filter: StrategyFilterVOInput, $offset: Int, $size: Int, $sortBy: String, $sortDirection: String) {
  data: strategies(filter: $filter, offset: $offset, size: $size, sortBy: $sortBy, sortDirection: $sortDirection) {
    id
    label
    name
    description
    comments
    creationDate
    updateDate
    status {
      ...ReferentialFragment
    }
    programId
    analyticReference
    departments {
      ...ReferentialFragment
    }
    appliedLocations {
      ...ReferentialFragment
    }
    appliedPeriods {
      startDate
      endDate
    }
    taxonNames {
      ...TaxonNameFragment
    }
    __typename
  }
  total: strategiesCount(filter: $filter)
}` + taxonNameFragment

const loadReferentialsQuery = `
query Referentials($entityName: String!, $filter: ReferentialFilterVOInput, $offset: Int, $size: Int, $sortBy: String, $sortDirection: String) {
  data: referentials(entityName: $entityName, filter: $filter, offset: $offset, size: $size, sortBy: $sortBy, sortDirection: $sortDirection) {
    ...ReferentialFragment
  }
  total: referentialsCount(entityName: $entityName, filter: $filter)
}` + referentialFragment

const loadTaxonNamesQuery = `
query TaxonNames($filter: TaxonNameFilterVOInput, $offset: Int, $size: Int, $sortBy: String, $sortDirection: String) {
  data: taxonNames(filter: $filter, offset: $offset, size: $size, sortBy: $sortBy, sortDirection: $sortDirection) {
    ...TaxonNameFragment
  }
}` + taxonNameFragment

const loadAggregatedLandingsQuery = `
query AggregatedLandings($filter: AggregatedLandingFilterVOInput) {
  data: aggregatedLandings(filter: $filter) {
    id
    updateDate
    program {
      ...ReferentialFragment
    }
    location {
      ...ReferentialFragment
    }
    vesselSnapshot {
      ...VesselSnapshotFragment
    }
    observedLocationId
    vesselActivities {
      date
      rankOrder
      comments
      observedLocationId
      landingId
      tripId
      metiers {
        ...ReferentialFragment
      }
    }
    __typename
  }
}` + referentialFragment + vesselFragment
